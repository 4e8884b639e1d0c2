//go:build !js

package dshow

import (
	"fmt"
	"os"
)

func debugLog(format string, args ...any) { // NOCOVER
	fmt.Fprintf(os.Stderr, format, args...)
}

func newStderrTracer(config Config) (*Tracer, error) {
	return config.NewTracer(os.Stderr)
}
