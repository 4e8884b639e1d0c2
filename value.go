package dshow

import (
	"iter"

	"github.com/reusee/e5"
)

// Value is a renderable tree built fresh for each render request.
// Leaves are fully rendered text, so a Value never references the data it was derived from.
type Value interface {
	isValue()
}

// Scalar is a primitive already rendered to its canonical text.
type Scalar string

// Composite is a named aggregate.
// Fields are either all named or all positional; no fields means a unit value.
type Composite struct {
	TypeName string
	Fields   []Field
}

// Field is a composite member. An empty Name marks a positional field.
type Field struct {
	Name  string
	Value Value
}

// List is an ordered sequence, used for slices and arrays.
type List struct {
	Items []Value
}

// Map is a sequence of key-value entries, in rendering order.
type Map struct {
	Entries []Entry
}

type Entry struct {
	Key   Value
	Value Value
}

// Ref is a non-nil pointer to Target.
type Ref struct {
	Target Value
}

func (Scalar) isValue()    {}
func (Composite) isValue() {}
func (List) isValue()      {}
func (Map) isValue()       {}
func (Ref) isValue()       {}

// F makes a named field.
func F(name string, value Value) Field {
	return Field{
		Name:  name,
		Value: value,
	}
}

// Named makes a composite with named fields.
func Named(typeName string, fields ...Field) Composite {
	checkTypeName(typeName)
	for _, field := range fields {
		if field.Name == "" {
			_ = throw(we.With(
				e5.Info("composite %s mixes named and positional fields", typeName),
			)(
				ErrBadComposite,
			))
		}
	}
	return Composite{
		TypeName: typeName,
		Fields:   fields,
	}
}

// Tuple makes a composite with positional fields.
func Tuple(typeName string, values ...Value) Composite {
	checkTypeName(typeName)
	fields := make([]Field, 0, len(values))
	for _, value := range values {
		fields = append(fields, Field{
			Value: value,
		})
	}
	return Composite{
		TypeName: typeName,
		Fields:   fields,
	}
}

// Unit makes a zero-field composite.
func Unit(typeName string) Composite {
	checkTypeName(typeName)
	return Composite{
		TypeName: typeName,
	}
}

func checkTypeName(typeName string) {
	if typeName == "" {
		_ = throw(we.With(
			e5.Info("empty type name"),
		)(
			ErrBadComposite,
		))
	}
}

// IsUnit reports whether c has no fields.
func (c Composite) IsUnit() bool {
	return len(c.Fields) == 0
}

// IsPositional reports whether c's fields are unnamed.
func (c Composite) IsPositional() bool {
	return len(c.Fields) > 0 && c.Fields[0].Name == ""
}

// Children iterates direct children of v in rendering order.
// Map entries yield the key followed by the value.
func Children(v Value) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		switch v := v.(type) {
		case Composite:
			for _, field := range v.Fields {
				if !yield(field.Value) {
					return
				}
			}
		case List:
			for _, item := range v.Items {
				if !yield(item) {
					return
				}
			}
		case Map:
			for _, entry := range v.Entries {
				if !yield(entry.Key) {
					return
				}
				if !yield(entry.Value) {
					return
				}
			}
		case Ref:
			yield(v.Target)
		}
	}
}
