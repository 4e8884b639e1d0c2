package dshow

import (
	"os"
	"sync"

	"github.com/reusee/e5"
)

// ConfigEnv names the environment variable holding the default tracer's YAML config path.
const ConfigEnv = "DSHOW_CONFIG"

var defaultTracer struct {
	once   sync.Once
	tracer *Tracer
}

// Default returns the process-wide tracer, writing to stderr unless SetDefault was called first.
func Default() *Tracer {
	defaultTracer.once.Do(func() {
		defaultTracer.tracer = newDefaultTracer()
	})
	return defaultTracer.tracer
}

// SetDefault sets the process-wide tracer.
// It must be called at most once, before any use of Default.
func SetDefault(tracer *Tracer) error {
	if tracer == nil {
		return we.With(
			e5.Info("nil tracer"),
		)(
			ErrBadArgument,
		)
	}
	set := false
	defaultTracer.once.Do(func() {
		defaultTracer.tracer = tracer
		set = true
	})
	if !set {
		return we.With(
			e5.Info("default tracer is already in use"),
		)(
			ErrAlreadyConfigured,
		)
	}
	return nil
}

func newDefaultTracer() *Tracer {
	config := DefaultConfig()
	if path := os.Getenv(ConfigEnv); path != "" {
		loaded, err := LoadConfigFile(path)
		if err != nil {
			debugLog("dshow: %v, using default config\n", err)
		} else {
			config = loaded
		}
	}
	tracer, err := newStderrTracer(config)
	if err != nil { // NOCOVER
		debugLog("dshow: %v, using default config\n", err)
		tracer, _ = newStderrTracer(DefaultConfig())
	}
	return tracer
}

// Dbg traces v on the default tracer and returns it.
// The expression text is taken from the caller's source file:
//
//	scale := 2
//	width := dshow.Dbg(30 * scale)
//
// emits "[main.go:4] 30 * scale = 60".
func Dbg[T any](v T) T {
	return traceValue(Default(), Caller(1), "Dbg", 0, v)
}

// DbgN traces each argument on the default tracer and returns them.
func DbgN(values ...any) []any {
	return traceValues(Default(), Caller(1), "DbgN", 0, values)
}

// Mark emits a marker record with the caller's site on the default tracer.
func Mark() {
	Default().Trace(Caller(1))
}
