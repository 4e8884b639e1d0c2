package dshow

import (
	"bytes"
	"strconv"
)

// Record is the diagnostic line emitted for one traced expression.
type Record struct {
	File     string
	Line     int
	Expr     string
	Value    string
	HasValue bool
}

// String returns "[file:line] expr = value", or "[file:line]" for a marker record.
func (r Record) String() string {
	buf := new(bytes.Buffer)
	r.writeTo(buf, nil)
	return buf.String()
}

func (r Record) location() string {
	return "[" + r.File + ":" + strconv.Itoa(r.Line) + "]"
}

// writeTo writes r without a line break. paint decorates the location if not nil.
func (r Record) writeTo(buf *bytes.Buffer, paint func(string) string) {
	location := r.location()
	if paint != nil {
		location = paint(location)
	}
	buf.WriteString(location)
	if !r.HasValue {
		return
	}
	buf.WriteByte(' ')
	buf.WriteString(r.Expr)
	buf.WriteString(" = ")
	buf.WriteString(r.Value)
}
