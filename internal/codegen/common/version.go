// Package common holds build information shared by the generators.
package common

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/exmachina-dev/CANopenNode/internal/codegen/common.Version=x.y.z"
var Version = ""

// devVersion marks builds that carry neither ldflags nor a module version.
const devVersion = "0.0.1-dev"

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the version set at build time via ldflags, else the
// module version recorded by "go install", else the development version.
func GetVersion() (string, error) {
	v := Version
	if v == "" {
		v = moduleVersion()
	}
	if v == "" {
		return devVersion, nil
	}

	version := strings.TrimPrefix(v, "v")
	baseVersion := strings.SplitN(version, "-", 2)[0]
	if !strings.Contains(baseVersion, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", v)
	}

	return version, nil
}

func moduleVersion() string {
	info, ok := readBuildInfo()
	if !ok || info.Main.Version == "(devel)" {
		return ""
	}
	return info.Main.Version
}

// CreatedBy is the FILE INFO creator written when the description names none.
func CreatedBy() (string, error) {
	v, err := GetVersion()
	if err != nil {
		return "", fmt.Errorf("get version: %w", err)
	}
	return "CANopenNode ODE " + v, nil
}
