package main

import (
	"bytes"
	"testing"
)

func TestPrintVersion(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		build     string
		buildTime string
		want      string
	}{
		{
			name:    "default build",
			version: "1.0.0",
			build:   "unknown",
			want:    "superrename version 1.0.0\n",
		},
		{
			name:    "release build with commit",
			version: "1.3.0",
			build:   "abc1234",
			want:    "superrename version 1.3.0 (build: abc1234)\n",
		},
		{
			name:      "release build with commit and time",
			version:   "1.3.0",
			build:     "abc1234",
			buildTime: "2026-10-19_12:00:00",
			want:      "superrename version 1.3.0 (build: abc1234, 2026-10-19_12:00:00)\n",
		},
		{
			name:      "build time without commit is omitted",
			version:   "1.3.0",
			build:     "",
			buildTime: "2026-10-19_12:00:00",
			want:      "superrename version 1.3.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origVersion, origBuild, origBuildTime := Version, Build, BuildTime
			defer func() {
				Version, Build, BuildTime = origVersion, origBuild, origBuildTime
			}()
			Version, Build, BuildTime = tt.version, tt.build, tt.buildTime

			var buf bytes.Buffer
			printVersion(&buf)

			if got := buf.String(); got != tt.want {
				t.Errorf("printVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
