package main

import (
	"os"
	"strings"

	"github.com/exmachina-dev/CANopenNode/internal/config"
	"github.com/exmachina-dev/CANopenNode/internal/configpaths"
	"github.com/exmachina-dev/CANopenNode/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(findUserConfig(os.Args[1:]), config.CommandNames())

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("ode"),
		kong.Description("Object Dictionary Editor: compiles CANopen object dictionaries to C"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logs, err := log.SetupLogger(logOptions(&cli, ctx.Command()))
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = logs.Close() }()

	ctx.Bind(logs.Logger)
	ctx.BindTo(logs.Fragments, (*log.FragmentLogger)(nil))

	err = ctx.Run()
	if err != nil {
		_ = logs.Close()
	}
	ctx.FatalIfErrorf(err)
}

// logOptions keeps log records off stdout when the selected command prints
// generated C or a dictionary listing there.
func logOptions(cli *config.CLI, command string) log.Options {
	return log.Options{
		Level:     cli.Log.Level,
		File:      cli.Log.File,
		TraceFile: cli.Log.TraceFile,
		Stdout:    cli.WritesStdout(command),
	}
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("ODE_CONFIG"); v != "" {
		return v
	}
	return ""
}
