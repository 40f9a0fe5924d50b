package common

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const prettyIndent = "  "

// PrettyHTML re-renders src with one node per line and two space
// indentation. Full documents are parsed as such, anything else as a body
// fragment. The content of script, style, pre and textarea is kept as is.
func PrettyHTML(src string) (string, error) {
	var nodes []*html.Node
	if isDocument(src) {
		doc, err := html.Parse(strings.NewReader(src))
		if err != nil {
			return "", fmt.Errorf("parsing document: %w", err)
		}
		nodes = []*html.Node{doc}
	} else {
		body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		var err error
		nodes, err = html.ParseFragment(strings.NewReader(src), body)
		if err != nil {
			return "", fmt.Errorf("parsing fragment: %w", err)
		}
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := prettyNode(&buf, n, 0); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func isDocument(src string) bool {
	head := strings.ToLower(strings.TrimSpace(src))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

var verbatimElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Pre:      true,
	atom.Textarea: true,
}

var voidElements = map[atom.Atom]bool{
	atom.Area:   true,
	atom.Base:   true,
	atom.Br:     true,
	atom.Col:    true,
	atom.Embed:  true,
	atom.Hr:     true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Link:   true,
	atom.Meta:   true,
	atom.Param:  true,
	atom.Source: true,
	atom.Track:  true,
	atom.Wbr:    true,
}

func prettyNode(buf *bytes.Buffer, n *html.Node, depth int) error {
	indent := strings.Repeat(prettyIndent, depth)

	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := prettyNode(buf, c, depth); err != nil {
				return err
			}
		}
	case html.DoctypeNode:
		buf.WriteString(indent)
		if err := html.Render(buf, n); err != nil {
			return err
		}
		buf.WriteByte('\n')
	case html.CommentNode:
		buf.WriteString(indent + "<!--" + n.Data + "-->\n")
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			buf.WriteString(indent + html.EscapeString(text) + "\n")
		}
	case html.ElementNode:
		buf.WriteString(indent)
		if verbatimElements[n.DataAtom] {
			if err := html.Render(buf, n); err != nil {
				return err
			}
			buf.WriteByte('\n')
			return nil
		}
		writeOpenTag(buf, n)
		if voidElements[n.DataAtom] {
			buf.WriteByte('\n')
			return nil
		}
		if n.FirstChild == nil {
			buf.WriteString("</" + n.Data + ">\n")
			return nil
		}
		if n.FirstChild == n.LastChild && n.FirstChild.Type == html.TextNode {
			buf.WriteString(html.EscapeString(strings.TrimSpace(n.FirstChild.Data)))
			buf.WriteString("</" + n.Data + ">\n")
			return nil
		}
		buf.WriteByte('\n')
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := prettyNode(buf, c, depth+1); err != nil {
				return err
			}
		}
		buf.WriteString(indent + "</" + n.Data + ">\n")
	}
	return nil
}

func writeOpenTag(buf *bytes.Buffer, n *html.Node) {
	buf.WriteString("<" + n.Data)
	for _, a := range n.Attr {
		buf.WriteByte(' ')
		if a.Namespace != "" {
			buf.WriteString(a.Namespace + ":")
		}
		buf.WriteString(a.Key + `="` + html.EscapeString(a.Val) + `"`)
	}
	buf.WriteByte('>')
}
