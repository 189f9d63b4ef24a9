// Package config holds the Kong command line root shared by every ode command.
package config

import (
	"reflect"
	"strings"

	"github.com/exmachina-dev/CANopenNode/internal/cmd"
)

// Log configures the slog logger and the fragment trace.
type Log struct {
	Level     string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"ODE_LOG_LEVEL"`
	File      string `help:"Also write logs to this file" type:"path" env:"ODE_LOG_FILE"`
	TraceFile string `help:"Write every assembled C fragment to this file" type:"path" env:"ODE_LOG_TRACE_FILE"`
}

type CLI struct {
	ConfigFile string `name:"config" help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"ODE_CONFIG"`
	Log        Log    `embed:"" prefix:"log."`

	Tree          cmd.Tree          `cmd:"" help:"Print the object dictionary tree"`
	Count         cmd.Count         `cmd:"" help:"Print the number of objects, sub-objects included"`
	GenerateFiles cmd.GenerateFiles `cmd:"" name:"generate_files" help:"Generate the CO_OD.h and CO_OD.c files"`
	Config        cmd.ConfigCommand `cmd:"" help:"Configuration file helpers"`
}

// stdoutWriter is implemented by commands that print their result.
type stdoutWriter interface {
	WritesStdout() bool
}

// CommandNames lists the Kong names of the commands that read settings,
// in declaration order. Each may have a configuration file of that name.
func CommandNames() []string {
	var out []string
	t := reflect.TypeOf((*CLI)(nil)).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if _, ok := f.Tag.Lookup("cmd"); !ok {
			continue
		}
		if !reflect.PointerTo(f.Type).Implements(reflect.TypeOf((*stdoutWriter)(nil)).Elem()) {
			continue
		}
		out = append(out, commandName(f))
	}
	return out
}

// WritesStdout reports whether the selected command prints its result on
// stdout, in which case logs must stay off it.
func (c *CLI) WritesStdout(command string) bool {
	top, _, _ := strings.Cut(command, " ")
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if _, ok := f.Tag.Lookup("cmd"); !ok || commandName(f) != top {
			continue
		}
		if w, ok := v.Field(i).Addr().Interface().(stdoutWriter); ok {
			return w.WritesStdout()
		}
	}
	return false
}

// commandName is the name Kong gives a single-word command field.
func commandName(f reflect.StructField) string {
	if n := f.Tag.Get("name"); n != "" {
		return n
	}
	return strings.ToLower(f.Name)
}
