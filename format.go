package dshow

import (
	"bytes"
	"io"
	"runtime"
	"strings"

	"fortio.org/safecast"
	"github.com/reusee/pr3"
)

// Formatter renders Value trees to text.
type Formatter struct {
	// Indent is the unit prepended once per nesting level in pretty mode.
	Indent string
	// MaxDepth bounds container nesting; deeper containers render as "..".
	// Zero or negative means unbounded.
	MaxDepth int
}

const (
	defaultIndent   = "    "
	defaultMaxDepth = 64
)

var DefaultFormatter = Formatter{
	Indent:   defaultIndent,
	MaxDepth: defaultMaxDepth,
}

// Render renders v with DefaultFormatter.
func Render(v Value, pretty bool) string {
	return DefaultFormatter.Render(v, pretty)
}

var buffersPool = pr3.NewPool(
	poolCapacity(),
	func() *bytes.Buffer {
		return new(bytes.Buffer)
	},
)

func poolCapacity() uint32 {
	n, err := safecast.Conv[uint32](runtime.NumCPU())
	if err != nil { // NOCOVER
		return 8
	}
	return n
}

func (f Formatter) Render(v Value, pretty bool) string {
	var buf *bytes.Buffer
	elem := buffersPool.Get(&buf)
	defer elem.Put()
	buf.Reset()
	f.write(buf, v, pretty, 0)
	return buf.String()
}

// WriteTo renders v to w in one Write call.
func (f Formatter) WriteTo(w io.Writer, v Value, pretty bool) (int64, error) {
	var buf *bytes.Buffer
	elem := buffersPool.Get(&buf)
	defer elem.Put()
	buf.Reset()
	f.write(buf, v, pretty, 0)
	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), we(err)
	}
	return int64(n), nil
}

func (f Formatter) write(buf *bytes.Buffer, v Value, pretty bool, depth int) {
	switch v := v.(type) {

	case Scalar:
		buf.WriteString(string(v))

	case Composite:
		buf.WriteString(v.TypeName)
		if len(v.Fields) == 0 {
			return
		}
		if v.IsPositional() {
			f.writeSeq(buf, "(", ")", "", len(v.Fields), pretty, depth, func(i int) {
				f.write(buf, v.Fields[i].Value, pretty, depth+1)
			})
			return
		}
		buf.WriteByte(' ')
		f.writeSeq(buf, "{", "}", " ", len(v.Fields), pretty, depth, func(i int) {
			buf.WriteString(v.Fields[i].Name)
			buf.WriteString(": ")
			f.write(buf, v.Fields[i].Value, pretty, depth+1)
		})

	case List:
		f.writeSeq(buf, "[", "]", "", len(v.Items), pretty, depth, func(i int) {
			f.write(buf, v.Items[i], pretty, depth+1)
		})

	case Map:
		f.writeSeq(buf, "{", "}", "", len(v.Entries), pretty, depth, func(i int) {
			f.write(buf, v.Entries[i].Key, pretty, depth+1)
			buf.WriteString(": ")
			f.write(buf, v.Entries[i].Value, pretty, depth+1)
		})

	case Ref:
		buf.WriteByte('&')
		f.write(buf, v.Target, pretty, depth)

	case nil:
		buf.WriteString("nil")

	}
}

// writeSeq writes n items between openDelim and closeDelim.
// pad goes inside the delimiters in compact mode.
func (f Formatter) writeSeq(
	buf *bytes.Buffer,
	openDelim, closeDelim, pad string,
	n int,
	pretty bool,
	depth int,
	item func(i int),
) {
	buf.WriteString(openDelim)
	if n == 0 {
		buf.WriteString(closeDelim)
		return
	}
	if f.MaxDepth > 0 && depth >= f.MaxDepth {
		buf.WriteString(pad)
		buf.WriteString("..")
		buf.WriteString(pad)
		buf.WriteString(closeDelim)
		return
	}

	if !pretty {
		buf.WriteString(pad)
		for i := range n {
			if i > 0 {
				buf.WriteString(", ")
			}
			item(i)
		}
		buf.WriteString(pad)
		buf.WriteString(closeDelim)
		return
	}

	buf.WriteByte('\n')
	inner := strings.Repeat(f.Indent, depth+1)
	for i := range n {
		buf.WriteString(inner)
		item(i)
		buf.WriteString(",\n")
	}
	buf.WriteString(strings.Repeat(f.Indent, depth))
	buf.WriteString(closeDelim)
}
