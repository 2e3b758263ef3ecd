// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package richtext converts the editor's JSON document tree into sanitized
// HTML. The document model is treated as opaque input: a node tree of typed
// blocks (paragraphs, headings, lists, quotes, code) with marked text leaves.
// All rendered output passes through a bluemonday UGC policy before it is
// stored or served.
package richtext

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Node is one element of the document tree. Text leaves carry Marks;
// container nodes carry Content.
type Node struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Marks   []Mark          `json:"marks,omitempty"`
	Attrs   map[string]any  `json:"attrs,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Mark decorates a text leaf: bold, italic, code, strike, or link.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// policy sanitizes rendered output. UGCPolicy allows common formatting
// elements while stripping scripts, event handlers, and unsafe URLs.
var policy = bluemonday.UGCPolicy()

// ToHTML renders a document to sanitized HTML. Unknown node types render
// their children transparently so a newer editor never breaks older servers.
func ToHTML(doc json.RawMessage) (string, error) {
	root, err := parse(doc)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := renderNode(&b, root); err != nil {
		return "", err
	}
	return policy.Sanitize(b.String()), nil
}

// WordCount returns the number of whitespace-separated words across all
// text leaves of the document. Malformed documents count zero words.
func WordCount(doc json.RawMessage) int {
	root, err := parse(doc)
	if err != nil {
		return 0
	}
	var b strings.Builder
	collectText(&b, root)
	return len(strings.Fields(b.String()))
}

// PreviewHTML renders a truncated copy of the document for the premium
// paywall. Blocks render in order until the word budget is spent; the
// block that crosses the budget is cut at a word boundary, so the preview
// is a strict prefix of the body even for single-block documents.
func PreviewHTML(doc json.RawMessage, maxWords int) (string, error) {
	root, err := parse(doc)
	if err != nil {
		return "", err
	}
	trimmed, _, err := truncate(root, maxWords)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := renderNode(&b, trimmed); err != nil {
		return "", err
	}
	return policy.Sanitize(b.String()), nil
}

// truncate returns a copy of n cut to at most budget words, along with
// the number of words the copy carries. Text leaves are cut mid-leaf at
// a word boundary; children past the budget are dropped.
func truncate(n *Node, budget int) (*Node, int, error) {
	out := *n
	if n.Type == "text" {
		words := strings.Fields(n.Text)
		if len(words) <= budget {
			return &out, len(words), nil
		}
		out.Text = strings.Join(words[:budget], " ")
		return &out, budget, nil
	}

	nodes, err := children(n)
	if err != nil {
		return nil, 0, err
	}
	used := 0
	kept := make([]Node, 0, len(nodes))
	for i := range nodes {
		if used >= budget {
			break
		}
		child, w, err := truncate(&nodes[i], budget-used)
		if err != nil {
			return nil, 0, err
		}
		used += w
		kept = append(kept, *child)
	}

	out.Content = nil
	if len(kept) > 0 {
		raw, err := json.Marshal(kept)
		if err != nil {
			return nil, 0, fmt.Errorf("richtext: truncate content: %w", err)
		}
		out.Content = raw
	}
	return &out, used, nil
}

// parse decodes the raw document and checks the root node type.
func parse(doc json.RawMessage) (*Node, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("richtext: empty document")
	}
	var root Node
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("richtext: parse document: %w", err)
	}
	if root.Type != "doc" {
		return nil, fmt.Errorf("richtext: unexpected root node %q", root.Type)
	}
	return &root, nil
}

// children decodes a node's content into child nodes.
func children(n *Node) ([]Node, error) {
	if len(n.Content) == 0 {
		return nil, nil
	}
	var nodes []Node
	if err := json.Unmarshal(n.Content, &nodes); err != nil {
		return nil, fmt.Errorf("richtext: parse content: %w", err)
	}
	return nodes, nil
}

// intAttr reads a numeric node attribute. JSON decoding yields float64;
// anything missing or non-numeric falls back to the default.
func intAttr(n *Node, key string, def int) int {
	switch v := n.Attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// renderNode writes the HTML for a single node and its children.
func renderNode(b *strings.Builder, n *Node) error {
	switch n.Type {
	case "doc":
		return renderChildren(b, n)
	case "paragraph":
		return wrap(b, n, "p")
	case "heading":
		level := intAttr(n, "level", 2)
		if level < 1 || level > 6 {
			level = 2
		}
		tag := fmt.Sprintf("h%d", level)
		return wrap(b, n, tag)
	case "bulletList":
		return wrap(b, n, "ul")
	case "orderedList":
		return wrap(b, n, "ol")
	case "listItem":
		return wrap(b, n, "li")
	case "blockquote":
		return wrap(b, n, "blockquote")
	case "codeBlock":
		b.WriteString("<pre><code>")
		var text strings.Builder
		collectText(&text, n)
		b.WriteString(html.EscapeString(text.String()))
		b.WriteString("</code></pre>")
		return nil
	case "horizontalRule":
		b.WriteString("<hr>")
		return nil
	case "hardBreak":
		b.WriteString("<br>")
		return nil
	case "text":
		b.WriteString(renderText(n))
		return nil
	default:
		// Unknown container: render children without a wrapper.
		return renderChildren(b, n)
	}
}

// wrap renders <tag>children</tag>.
func wrap(b *strings.Builder, n *Node, tag string) error {
	b.WriteString("<" + tag + ">")
	if err := renderChildren(b, n); err != nil {
		return err
	}
	b.WriteString("</" + tag + ">")
	return nil
}

func renderChildren(b *strings.Builder, n *Node) error {
	nodes, err := children(n)
	if err != nil {
		return err
	}
	for i := range nodes {
		if err := renderNode(b, &nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

// renderText escapes a text leaf and applies its marks inside-out.
func renderText(n *Node) string {
	out := html.EscapeString(n.Text)
	for i := len(n.Marks) - 1; i >= 0; i-- {
		m := n.Marks[i]
		switch m.Type {
		case "bold":
			out = "<strong>" + out + "</strong>"
		case "italic":
			out = "<em>" + out + "</em>"
		case "code":
			out = "<code>" + out + "</code>"
		case "strike":
			out = "<del>" + out + "</del>"
		case "link":
			href, _ := m.Attrs["href"].(string)
			out = `<a href="` + html.EscapeString(href) + `" rel="nofollow">` + out + "</a>"
		}
	}
	return out
}

// collectText appends all text leaves beneath n, separating blocks with
// spaces so adjacent words never fuse.
func collectText(b *strings.Builder, n *Node) {
	if n.Type == "text" {
		b.WriteString(n.Text)
		return
	}
	nodes, err := children(n)
	if err != nil {
		return
	}
	for i := range nodes {
		collectText(b, &nodes[i])
		b.WriteString(" ")
	}
}
