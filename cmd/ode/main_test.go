package main

import (
	"testing"

	"github.com/exmachina-dev/CANopenNode/internal/config"
	"github.com/exmachina-dev/CANopenNode/internal/log"

	"github.com/stretchr/testify/assert"
)

func TestFindUserConfig(t *testing.T) {
	t.Setenv("ODE_CONFIG", "")
	assert.Equal(t, "a.yaml", findUserConfig([]string{"tree", "--config=a.yaml"}))
	assert.Equal(t, "b.toml", findUserConfig([]string{"--config", "b.toml", "count"}))
	assert.Equal(t, "", findUserConfig([]string{"count", "--config"}))

	t.Setenv("ODE_CONFIG", "env.json")
	assert.Equal(t, "env.json", findUserConfig([]string{"tree"}))
	assert.Equal(t, "flag.json", findUserConfig([]string{"--config=flag.json"}))
}

func TestLogOptions(t *testing.T) {
	cli := config.CLI{Log: config.Log{Level: "debug", File: "ode.log", TraceFile: "fragments.log"}}

	opts := logOptions(&cli, "generate_files")
	assert.Equal(t, log.Options{Level: "debug", File: "ode.log", TraceFile: "fragments.log", Stdout: true}, opts)

	cli.GenerateFiles.Output = "out"
	assert.False(t, logOptions(&cli, "generate_files").Stdout)
	assert.True(t, logOptions(&cli, "tree").Stdout)
}
