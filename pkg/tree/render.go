package tree

import (
	"fmt"
	"io"
)

// Render writes the rows as plain text, one line per node.
func Render(w io.Writer, nodes []*Node) {
	for _, n := range nodes {
		fmt.Fprintln(w, n.Line())
	}
}
