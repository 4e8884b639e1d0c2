package dshow

import (
	"fmt"
	"syscall/js"
)

var (
	Global  = js.Global()
	Console = Global.Get("console")
)

func debugLog(format string, args ...any) {
	Console.Call("log", fmt.Sprintf(format, args...))
}

type consoleSink struct{}

func (consoleSink) WriteRecord(r Record) {
	Console.Call("error", r.String())
}

func newStderrTracer(config Config) (*Tracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	style, err := ParsePathStyle(config.PathStyle)
	if err != nil {
		return nil, err
	}
	return NewTracer(consoleSink{}).
		WithFormatter(config.Formatter()).
		WithPathStyle(style), nil
}
