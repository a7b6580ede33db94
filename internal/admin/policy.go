package admin

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	policyWrapperAttr  = "data-policy-wrapper"
	policyWrapperStyle = "margin:16px;"
)

// WrapPolicy wraps published policy markup in the console's styling div.
// Already wrapped content and blank content are returned trimmed.
func WrapPolicy(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}
	if _, ok := policyWrapperContent(trimmed); ok {
		return trimmed
	}
	return fmt.Sprintf(`<div %s="true" style="%s">%s</div>`, policyWrapperAttr, policyWrapperStyle, trimmed)
}

// UnwrapPolicy returns the markup inside the styling div, or the trimmed
// input when it is not wrapped.
func UnwrapPolicy(content string) string {
	trimmed := strings.TrimSpace(content)
	if inner, ok := policyWrapperContent(trimmed); ok {
		return inner
	}
	return trimmed
}

func policyWrapperContent(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), container)
	if err != nil {
		return "", false
	}

	var first *html.Node
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			first = n
			break
		}
	}
	if first == nil || !isPolicyWrapper(first) {
		return "", false
	}

	var b strings.Builder
	for c := first.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", false
		}
	}
	return b.String(), true
}

func isPolicyWrapper(n *html.Node) bool {
	var marker, style string
	var hasStyle bool
	for _, a := range n.Attr {
		switch a.Key {
		case policyWrapperAttr:
			marker = a.Val
		case "style":
			style, hasStyle = a.Val, true
		}
	}
	return marker == "true" && hasStyle && stripSpace(style) == stripSpace(policyWrapperStyle)
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
