package main

import (
	"fmt"
	"io"
)

// Version information, injected at build time via ldflags.
// Version is also the compiled-in version the upgrade check compares against.
var (
	Version   = "1.0.0"
	Build     = "unknown"
	BuildTime = ""
)

// printVersion writes the version line shown by -v/--version.
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "superrename version %s", Version)
	if Build != "unknown" && Build != "" {
		_, _ = fmt.Fprintf(w, " (build: %s", Build)
		if BuildTime != "" {
			_, _ = fmt.Fprintf(w, ", %s", BuildTime)
		}
		_, _ = fmt.Fprint(w, ")")
	}
	_, _ = fmt.Fprintln(w)
}
