package dshow

import (
	"strings"
	"testing"
)

func FuzzRender(f *testing.F) {
	f.Add("Rectangle", "width", "30", uint8(2))
	f.Add("Color", "", "0", uint8(3))
	f.Add("AlwaysEqual", "x", "", uint8(0))

	f.Fuzz(func(t *testing.T, typeName string, fieldName string, scalar string, numFields uint8) {
		if typeName == "" {
			return
		}
		n := int(numFields % 8)

		if Render(Scalar(scalar), false) != scalar || Render(Scalar(scalar), true) != scalar {
			t.Fatal("scalar must render verbatim")
		}

		var v Composite
		if fieldName == "" {
			values := make([]Value, 0, n)
			for range n {
				values = append(values, Scalar(scalar))
			}
			v = Tuple(typeName, values...)
		} else {
			fields := make([]Field, 0, n)
			for range n {
				fields = append(fields, F(fieldName, Scalar(scalar)))
			}
			v = Named(typeName, fields...)
		}

		compact := Render(v, false)
		pretty := Render(v, true)
		if compact != Render(v, false) || pretty != Render(v, true) {
			t.Fatal("not deterministic")
		}
		if !strings.HasPrefix(compact, typeName) || !strings.HasPrefix(pretty, typeName) {
			t.Fatal("type name must lead")
		}
		if n == 0 {
			if compact != typeName || pretty != typeName {
				t.Fatal("unit must render as its name")
			}
			return
		}
		// one trailing comma per field in pretty mode
		if strings.Count(pretty, ",\n") < n {
			t.Fatalf("got %q", pretty)
		}
	})
}
