/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package version provides build information.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the release of d4events.
// This is set at build time via ldflags:
//
//	-X github.com/friendsincode/d4events/internal/version.Version=X.Y.Z
var Version = "0.3.0"

// Info describes the running binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get collects build information for the running binary.
func Get() Info {
	info := Info{
		Version:   Version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		}
	}
	return info
}

func (i Info) String() string {
	if i.Commit == "" {
		return fmt.Sprintf("d4events %s (%s, %s)", i.Version, i.GoVersion, i.Platform)
	}
	return fmt.Sprintf("d4events %s-%s (%s, %s)", i.Version, i.Commit, i.GoVersion, i.Platform)
}
