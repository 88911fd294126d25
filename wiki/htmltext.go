package wiki

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Element classes that carry navigation chrome or reference apparatus
// rather than article prose.
var skipClasses = []string{
	"navbox", "reflist", "references", "infobox",
	"mbox", "ambox", "catlinks", "printfooter",
}

var (
	manyNewlines = regexp.MustCompile(`\n{3,}`)
	manySpaces   = regexp.MustCompile(`[ \t]{2,}`)
)

// HTMLToText converts rendered MediaWiki article HTML into plain text.
// Section headings become "== Heading ==" markers so downstream chunking
// can split on them. Tables, scripts, styles, and navigation boxes are
// dropped.
func HTMLToText(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	walk(doc, &b)

	text := b.String()
	text = manyNewlines.ReplaceAllString(text, "\n\n")
	text = manySpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text), nil
}

func walk(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "table", "style", "script", "sup":
			return
		case "h2":
			b.WriteString("\n\n== " + headingText(n) + " ==\n")
			return
		case "h3":
			b.WriteString("\n\n=== " + headingText(n) + " ===\n")
			return
		case "p", "div", "ul", "ol", "blockquote":
			if hasSkipClass(n) {
				return
			}
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, b)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "li", "blockquote", "br":
			b.WriteString("\n")
		}
	}
}

func hasSkipClass(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		lower := strings.ToLower(attr.Val)
		for _, skip := range skipClasses {
			if strings.Contains(lower, skip) {
				return true
			}
		}
	}
	return false
}

// headingText extracts the visible heading, ignoring edit-section links.
func headingText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "span" && hasClassValue(n, "mw-editsection") {
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}

func hasClassValue(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(attr.Val, class) {
			return true
		}
	}
	return false
}
