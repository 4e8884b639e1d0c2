package dshow

import "runtime"

// Site is a source location of a trace call.
type Site struct {
	File string
	Line int
}

// Caller returns the site of the caller, skip frames above the function calling Caller.
func Caller(skip int) Site {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Site{
			File: "?",
		}
	}
	return Site{
		File: file,
		Line: line,
	}
}
