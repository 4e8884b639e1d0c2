package dshow

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/reusee/e5"
)

// Tracer reports traced expressions to a Sink.
// A Tracer is immutable; the With* methods return modified copies.
type Tracer struct {
	sink      Sink
	formatter Formatter
	pathStyle PathStyle
	workDir   string
}

// Expr is an evaluated expression and its source text.
type Expr struct {
	Text  string
	Value any
}

func NewTracer(sink Sink) *Tracer {
	if sink == nil {
		_ = throw(we.With(
			e5.Info("nil sink"),
		)(
			ErrBadArgument,
		))
	}
	workDir, _ := os.Getwd()
	return &Tracer{
		sink:      sink,
		formatter: DefaultFormatter,
		pathStyle: PathRelative,
		workDir:   workDir,
	}
}

func (t *Tracer) WithFormatter(formatter Formatter) *Tracer {
	ret := *t
	ret.formatter = formatter
	return &ret
}

func (t *Tracer) WithPathStyle(style PathStyle) *Tracer {
	ret := *t
	ret.pathStyle = style
	return &ret
}

// Trace emits one record per expression, in order, all sharing site,
// and returns the expression values unchanged.
// With no expressions, a single marker record is emitted.
// Expressions are never evaluated here; callers pass already-evaluated values.
func (t *Tracer) Trace(site Site, exprs ...Expr) []any {
	file := t.displayPath(site.File)
	if len(exprs) == 0 {
		t.sink.WriteRecord(Record{
			File: file,
			Line: site.Line,
		})
		return nil
	}
	ret := make([]any, 0, len(exprs))
	for _, expr := range exprs {
		t.sink.WriteRecord(Record{
			File:     file,
			Line:     site.Line,
			Expr:     expr.Text,
			Value:    t.formatter.Render(Of(expr.Value), true),
			HasValue: true,
		})
		ret = append(ret, expr.Value)
	}
	return ret
}

// Mark emits a marker record for the caller's site.
func (t *Tracer) Mark() {
	t.Trace(Caller(1))
}

// TraceN traces each argument, taking their source text from the caller's file.
func (t *Tracer) TraceN(values ...any) []any {
	return traceValues(t, Caller(1), "TraceN", 0, values)
}

// TraceValue traces v, taking its source text from the caller's file, and returns v.
//
//	area := dshow.TraceValue(tracer, width*height)
func TraceValue[T any](t *Tracer, v T) T {
	return traceValue(t, Caller(1), "TraceValue", 1, v)
}

func traceValue[T any](t *Tracer, site Site, callee string, offset int, v T) T {
	text := unknownExpr
	if texts := argTexts(site, callee, offset, 1); texts != nil {
		text = texts[0]
	}
	t.Trace(site, Expr{
		Text:  text,
		Value: v,
	})
	return v
}

func traceValues(t *Tracer, site Site, callee string, offset int, values []any) []any {
	if len(values) == 0 {
		t.Trace(site)
		return values
	}
	texts := argTexts(site, callee, offset, len(values))
	exprs := make([]Expr, 0, len(values))
	for i, value := range values {
		text := unknownExpr
		if texts != nil {
			text = texts[i]
		}
		exprs = append(exprs, Expr{
			Text:  text,
			Value: value,
		})
	}
	t.Trace(site, exprs...)
	return values
}

func (t *Tracer) displayPath(file string) string {
	switch t.pathStyle {
	case PathFull:
		return file
	case PathBase:
		return filepath.Base(file)
	default:
		if t.workDir == "" || !filepath.IsAbs(file) {
			return file
		}
		rel, err := filepath.Rel(t.workDir, file)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return file
		}
		return rel
	}
}
