package dshow

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Sink is a diagnostic channel.
// Each WriteRecord call must emit the record as one indivisible unit.
type Sink interface {
	WriteRecord(Record)
}

// WriterSink writes records as lines to an io.Writer, one Write call per record.
// Write errors are dropped: tracing never fails the traced code.
type WriterSink struct {
	// shared by sinks derived from the same writer
	mutex *sync.Mutex
	w     io.Writer
	paint func(string) string
}

var _ Sink = new(WriterSink)

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{
		mutex: new(sync.Mutex),
		w:     w,
	}
}

// WithColor returns a sink writing to the same writer with colored locations.
func (s *WriterSink) WithColor() *WriterSink {
	c := color.New(color.FgCyan, color.Bold)
	c.EnableColor()
	return &WriterSink{
		mutex: s.mutex,
		w:     s.w,
		paint: func(location string) string {
			return c.Sprint(location)
		},
	}
}

func (s *WriterSink) WriteRecord(r Record) {
	var buf *bytes.Buffer
	elem := buffersPool.Get(&buf)
	defer elem.Put()
	buf.Reset()
	r.writeTo(buf, s.paint)
	buf.WriteByte('\n')

	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, _ = s.w.Write(buf.Bytes())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// MemorySink keeps records in memory.
type MemorySink struct {
	mutex   sync.Mutex
	records []Record
}

var _ Sink = new(MemorySink)

func (m *MemorySink) WriteRecord(r Record) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.records = append(m.records, r)
}

func (m *MemorySink) Records() []Record {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	ret := make([]Record, len(m.records))
	copy(ret, m.records)
	return ret
}

// Lines returns the textual form of each record.
func (m *MemorySink) Lines() []string {
	records := m.Records()
	ret := make([]string, 0, len(records))
	for _, r := range records {
		ret = append(ret, r.String())
	}
	return ret
}
