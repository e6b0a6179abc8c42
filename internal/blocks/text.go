package blocks

import (
	"bytes"
	stdhtml "html"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	brRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	listItemRe   = regexp.MustCompile(`(?s)<li>(.*?)</li>`)
)

// ExtractText reduces block markup to the plain text a translator should
// see: line-break tags become newlines, all other tags are dropped and
// whitespace runs collapse to single spaces.
func ExtractText(markup string) string {
	text := brRe.ReplaceAllString(markup, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = stdhtml.UnescapeString(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ReplaceText swaps the text content inside markup for translation,
// keeping the outermost element and its attributes intact.
func ReplaceText(markup, translation string) string {
	ctxNode := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctxNode)
	if err != nil {
		return markup
	}
	var target *html.Node
	for _, node := range nodes {
		if node.Type == html.ElementNode {
			target = node
			break
		}
	}
	if target == nil {
		return stdhtml.EscapeString(translation)
	}
	for child := target.FirstChild; child != nil; {
		next := child.NextSibling
		target.RemoveChild(child)
		child = next
	}
	target.AppendChild(&html.Node{Type: html.TextNode, Data: translation})

	var buf bytes.Buffer
	for _, node := range nodes {
		if err := html.Render(&buf, node); err != nil {
			return markup
		}
	}
	return buf.String()
}

// ListItems returns the inner markup of each <li> in order.
func ListItems(markup string) []string {
	matches := listItemRe.FindAllStringSubmatch(markup, -1)
	items := make([]string, 0, len(matches))
	for _, m := range matches {
		items = append(items, m[1])
	}
	return items
}

// ReplaceListItem splices a translated item into the list markup at the
// given item position. Matching by position rather than by text keeps
// sibling items intact when one item's markup is a substring of
// another's.
func ReplaceListItem(markup string, index int, translation string) string {
	spans := listItemRe.FindAllStringSubmatchIndex(markup, -1)
	if index < 0 || index >= len(spans) {
		return markup
	}
	start, end := spans[index][2], spans[index][3]
	return markup[:start] + stdhtml.EscapeString(translation) + markup[end:]
}
