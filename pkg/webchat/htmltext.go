package webchat

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlToText reduces a reply's HTML fragment to readable plain text. Script
// and style subtrees are dropped, block boundaries become newlines and
// runs of whitespace collapse to a single space within a line.
func htmlToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		// Unparseable markup still has value as raw text.
		return strings.TrimSpace(fragment)
	}

	var builder strings.Builder
	collectText(doc, &builder)
	return normalizeWhitespace(builder.String())
}

func collectText(n *html.Node, builder *strings.Builder) {
	if n.Type == html.CommentNode {
		return
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	if n.Type == html.TextNode {
		builder.WriteString(n.Data)
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, builder)
	}
	if n.Type == html.ElementNode && isBlockElement(n.Data) {
		builder.WriteByte('\n')
	}
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "table", "tr", "blockquote", "pre", "section", "article":
		return true
	}
	return false
}

// normalizeWhitespace collapses intra-line whitespace and squeezes blank-line
// runs down to a single separator.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
