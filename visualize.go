package dshow

import (
	"io"
	"strconv"

	"github.com/emicklei/dot"
)

// Visualize writes v as a Graphviz DOT digraph, one node per Value.
func Visualize(w io.Writer, v Value) error {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")

	nextID := 0
	var add func(v Value) dot.Node
	add = func(v Value) dot.Node {
		node := g.Node("n" + strconv.Itoa(nextID))
		nextID++

		switch v := v.(type) {

		case Scalar:
			node.Label(string(v))

		case Composite:
			node.Label(v.TypeName).Attr("shape", "box")
			for i, field := range v.Fields {
				label := field.Name
				if label == "" {
					label = strconv.Itoa(i)
				}
				g.Edge(node, add(field.Value), label)
			}

		case List:
			node.Label("[]").Attr("shape", "box")
			for i, item := range v.Items {
				g.Edge(node, add(item), strconv.Itoa(i))
			}

		case Map:
			node.Label("{}").Attr("shape", "box")
			for _, entry := range v.Entries {
				key := add(entry.Key)
				g.Edge(node, key, "key")
				g.Edge(key, add(entry.Value), "value")
			}

		case Ref:
			node.Label("&")
			g.Edge(node, add(v.Target))

		case nil:
			node.Label("nil")

		}
		return node
	}
	add(v)

	if _, err := io.WriteString(w, g.String()); err != nil {
		return we(err)
	}
	return nil
}
