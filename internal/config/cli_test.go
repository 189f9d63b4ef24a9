package config

import (
	"testing"

	"github.com/exmachina-dev/CANopenNode/internal/cmd"

	"github.com/stretchr/testify/assert"
)

func TestCommandNames(t *testing.T) {
	assert.Equal(t, []string{"tree", "count", "generate_files"}, CommandNames())
}

func TestWritesStdout(t *testing.T) {
	type testCase struct {
		name    string
		cli     CLI
		command string
		want    bool
	}

	cases := []testCase{
		{name: "tree", command: "tree", want: true},
		{name: "count", command: "count", want: true},
		{name: "generate to stdout", command: "generate_files", want: true},
		{name: "generate to directory", cli: CLI{GenerateFiles: cmd.GenerateFiles{Output: "out"}}, command: "generate_files"},
		{name: "debug dump with directory", cli: CLI{GenerateFiles: cmd.GenerateFiles{Output: "out", Debug: true}}, command: "generate_files", want: true},
		{name: "config init", command: "config init <command>"},
		{name: "empty", command: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cli.WritesStdout(tc.command))
		})
	}
}
