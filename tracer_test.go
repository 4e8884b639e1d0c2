package dshow

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTrace(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink)
	scale := 2
	ret := tracer.Trace(Site{File: "main.go", Line: 12}, Expr{
		Text:  "30 * scale",
		Value: 30 * scale,
	})
	if len(ret) != 1 || ret[0].(int) != 60 {
		t.Fatalf("got %v", ret)
	}
	lines := sink.Lines()
	if len(lines) != 1 || lines[0] != "[main.go:12] 30 * scale = 60" {
		t.Fatalf("got %q", lines)
	}
}

func TestTraceMarker(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink)
	if ret := tracer.Trace(Site{File: "main.go", Line: 3}); len(ret) != 0 {
		t.Fatal()
	}
	records := sink.Records()
	if len(records) != 1 || records[0].HasValue {
		t.Fatalf("got %v", records)
	}
	if records[0].String() != "[main.go:3]" {
		t.Fatalf("got %q", records[0].String())
	}
}

func TestTraceMultiple(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink)
	ret := tracer.Trace(Site{File: "main.go", Line: 7},
		Expr{Text: "a", Value: 1},
		Expr{Text: "b", Value: "x"},
		Expr{Text: "rect", Value: testRectangle{Width: 30, Height: 50}},
	)
	if len(ret) != 3 || ret[0] != 1 || ret[1] != "x" || ret[2] != (testRectangle{Width: 30, Height: 50}) {
		t.Fatalf("got %v", ret)
	}
	expected := []string{
		"[main.go:7] a = 1",
		`[main.go:7] b = "x"`,
		"[main.go:7] rect = testRectangle {\n    Width: 30,\n    Height: 50,\n}",
	}
	lines := sink.Lines()
	if len(lines) != len(expected) {
		t.Fatalf("got %q", lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Fatalf("got %q", lines[i])
		}
	}
}

func TestTraceValueEvaluatesOnce(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink)
	count := 0
	next := func() int {
		count++
		return count
	}
	line := Caller(0).Line + 1
	v := TraceValue(tracer, next())
	if v != 1 || count != 1 {
		t.Fatalf("got %d, called %d times", v, count)
	}
	records := sink.Records()
	if len(records) != 1 {
		t.Fatal()
	}
	r := records[0]
	if r.File != "tracer_test.go" || r.Line != line || r.Expr != "next()" || r.Value != "1" {
		t.Fatalf("got %#v", r)
	}
}

func TestTraceValueComposes(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink)
	scale := 2
	rect := testRectangle{
		Width:  TraceValue(tracer, uint32(30*scale)),
		Height: 50,
	}
	TraceValue(tracer, &rect)
	lines := sink.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %q", lines)
	}
	if !strings.HasSuffix(lines[0], "] uint32(30*scale) = 60") {
		t.Fatalf("got %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "] &rect = &testRectangle {\n    Width: 60,\n    Height: 50,\n}") {
		t.Fatalf("got %q", lines[1])
	}
}

func TestTraceValueMultiline(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink)
	v := TraceValue(tracer,
		1+
			2,
	)
	if v != 3 {
		t.Fatal()
	}
	r := sink.Records()[0]
	if !strings.HasPrefix(r.Expr, "1+") || r.Value != "3" {
		t.Fatalf("got %#v", r)
	}
}

func TestTraceN(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink)
	a, b := 1, 2
	ret := tracer.TraceN(a, b+1)
	if len(ret) != 2 || ret[0] != 1 || ret[1] != 3 {
		t.Fatalf("got %v", ret)
	}
	records := sink.Records()
	if len(records) != 2 ||
		records[0].Expr != "a" ||
		records[1].Expr != "b+1" ||
		records[0].Line != records[1].Line {
		t.Fatalf("got %#v", records)
	}

	// source text is unknown for spread arguments
	values := []any{1, 2}
	tracer.TraceN(values...)
	records = sink.Records()
	if records[2].Expr != unknownExpr || records[3].Expr != unknownExpr {
		t.Fatalf("got %#v", records)
	}

	tracer.TraceN()
	records = sink.Records()
	if len(records) != 5 || records[4].HasValue {
		t.Fatalf("got %#v", records)
	}
}

func TestTracerMark(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink).WithPathStyle(PathBase)
	line := Caller(0).Line + 1
	tracer.Mark()
	lines := sink.Lines()
	if len(lines) != 1 || lines[0] != "[tracer_test.go:"+strconv.Itoa(line)+"]" {
		t.Fatalf("got %q", lines)
	}
}

func TestTracerPathStyle(t *testing.T) {
	sink := new(MemorySink)
	site := Caller(0)
	NewTracer(sink).WithPathStyle(PathFull).Trace(site)
	NewTracer(sink).WithPathStyle(PathBase).Trace(site)
	NewTracer(sink).Trace(site)
	NewTracer(sink).Trace(Site{File: "/elsewhere/main.go", Line: 1})
	records := sink.Records()
	if records[0].File != site.File {
		t.Fatalf("got %s", records[0].File)
	}
	if records[1].File != "tracer_test.go" {
		t.Fatalf("got %s", records[1].File)
	}
	if records[2].File != "tracer_test.go" {
		t.Fatalf("got %s", records[2].File)
	}
	if records[3].File != "/elsewhere/main.go" {
		t.Fatalf("got %s", records[3].File)
	}
}

func TestTracerFormatter(t *testing.T) {
	sink := new(MemorySink)
	tracer := NewTracer(sink).WithFormatter(Formatter{
		Indent: "  ",
	})
	tracer.Trace(Site{File: "a.go", Line: 1}, Expr{
		Text:  "c",
		Value: testColor{R: 255},
	})
	if got := sink.Lines()[0]; got != "[a.go:1] c = testColor(\n  255,\n  0,\n  0,\n)" {
		t.Fatalf("got %q", got)
	}
}

func TestNewTracerNilSink(t *testing.T) {
	expectPanic(t, ErrBadArgument, func() {
		NewTracer(nil)
	})
}

type writesRecorder struct {
	mutex  sync.Mutex
	writes []string
}

func (w *writesRecorder) Write(p []byte) (int, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func TestWriterSinkAtomicRecords(t *testing.T) {
	w := new(writesRecorder)
	tracer := NewTracer(NewWriterSink(w))
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 16 {
				tracer.Trace(Site{File: "a.go", Line: i}, Expr{
					Text:  "rect",
					Value: testRectangle{Width: uint32(i)},
				})
			}
		}()
	}
	wg.Wait()
	if len(w.writes) != 16*16 {
		t.Fatalf("got %d writes", len(w.writes))
	}
	for _, write := range w.writes {
		if !strings.HasPrefix(write, "[a.go:") ||
			!strings.HasSuffix(write, "}\n") ||
			strings.Count(write, "[") != 1 {
			t.Fatalf("got %q", write)
		}
	}
}

func TestWriterSinkColor(t *testing.T) {
	buf := new(bytes.Buffer)
	sink := NewWriterSink(buf)
	sink.WriteRecord(Record{File: "a.go", Line: 1})
	sink.WithColor().WriteRecord(Record{File: "a.go", Line: 1})
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "[a.go:1]" {
		t.Fatalf("got %q", lines[0])
	}
	if !strings.Contains(lines[1], "\x1b[") || !strings.Contains(lines[1], "[a.go:1]") {
		t.Fatalf("got %q", lines[1])
	}
}

type overlapDetector struct {
	writing  atomic.Bool
	overlaps atomic.Int64
}

func (o *overlapDetector) Write(p []byte) (int, error) {
	if !o.writing.CompareAndSwap(false, true) {
		o.overlaps.Add(1)
		return len(p), nil
	}
	time.Sleep(time.Microsecond)
	o.writing.Store(false)
	return len(p), nil
}

func TestWriterSinkColorSharesLock(t *testing.T) {
	w := new(overlapDetector)
	plain := NewWriterSink(w)
	colored := plain.WithColor()
	var wg sync.WaitGroup
	for i := range 8 {
		sink := Sink(plain)
		if i%2 == 0 {
			sink = colored
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 64 {
				sink.WriteRecord(Record{File: "a.go", Line: i})
			}
		}()
	}
	wg.Wait()
	if n := w.overlaps.Load(); n != 0 {
		t.Fatalf("%d overlapping writes", n)
	}
}
