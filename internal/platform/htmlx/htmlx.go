package htmlx

import (
	"strings"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Predicate selects nodes during a walk.
type Predicate func(*html.Node) bool

func Parse(content string) (*html.Node, error) {
	return html.Parse(strings.NewReader(content))
}

// Text returns the visible text under n with whitespace collapsed.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			_, _ = buf.WriteString(node.Data)
			_ = buf.WriteByte(' ')
			return
		case html.ElementNode:
			if node.DataAtom == atom.Script || node.DataAtom == atom.Style {
				return
			}
		case html.CommentNode:
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(buf.String()), " ")
}

// RawText concatenates text children without skipping scripts. It is used
// to read inline script bodies.
func RawText(n *html.Node) string {
	if n == nil {
		return ""
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			_, _ = buf.WriteString(c.Data)
		}
	}
	return buf.String()
}

func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func HasClass(n *html.Node, className string) bool {
	for _, class := range strings.Fields(Attr(n, "class")) {
		if class == className {
			return true
		}
	}
	return false
}

func FindAll(n *html.Node, match Predicate) []*html.Node {
	if n == nil {
		return nil
	}
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if match(node) {
			results = append(results, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return results
}

func FindFirst(n *html.Node, match Predicate) *html.Node {
	if n == nil {
		return nil
	}
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func Tag(name string) Predicate {
	a := atom.Lookup([]byte(name))
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		if a != 0 {
			return n.DataAtom == a
		}
		return n.Data == name
	}
}

func ID(id string) Predicate {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, "id") == id
	}
}

func Class(className string) Predicate {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && HasClass(n, className)
	}
}

func AttrEquals(key, value string) Predicate {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && Attr(n, key) == value
	}
}

func And(preds ...Predicate) Predicate {
	return func(n *html.Node) bool {
		for _, p := range preds {
			if !p(n) {
				return false
			}
		}
		return true
	}
}

// Rows returns the body rows of a table: rows inside tbody when present,
// otherwise every row that is not inside thead.
func Rows(table *html.Node) []*html.Node {
	if table == nil {
		return nil
	}
	if tbody := FindFirst(table, Tag("tbody")); tbody != nil {
		return FindAll(tbody, Tag("tr"))
	}
	var out []*html.Node
	for _, tr := range FindAll(table, Tag("tr")) {
		if tr.Parent != nil && tr.Parent.DataAtom == atom.Thead {
			continue
		}
		out = append(out, tr)
	}
	return out
}

// Cells returns the direct td and th children of a row.
func Cells(tr *html.Node) []*html.Node {
	if tr == nil {
		return nil
	}
	var out []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, c)
		}
	}
	return out
}

// HeaderIndex returns the column index whose header text equals label, or -1.
func HeaderIndex(table *html.Node, label string) int {
	thead := FindFirst(table, Tag("thead"))
	scope := table
	if thead != nil {
		scope = thead
	}
	for _, tr := range FindAll(scope, Tag("tr")) {
		for i, cell := range Cells(tr) {
			if strings.EqualFold(Text(cell), label) {
				return i
			}
		}
	}
	return -1
}

// Commented parses HTML fragments that pages ship inside comments (a common
// way to defer rendering of secondary tables) and returns their roots.
func Commented(n *html.Node, marker string) []*html.Node {
	comments := FindAll(n, func(node *html.Node) bool {
		return node.Type == html.CommentNode && strings.Contains(node.Data, marker)
	})
	out := make([]*html.Node, 0, len(comments))
	for _, c := range comments {
		root, err := Parse(c.Data)
		if err != nil {
			continue
		}
		out = append(out, root)
	}
	return out
}
