// Package htmlclean strips HTML down to either "link-search" markup (block
// elements removed, anchors kept, for link extraction) or plain text (all
// tags and entities removed, for tokenization). Grounded on the two-stage
// stripBlockElements/stripTags/stripEntities cleaning
// original_source/Project/src/Crawler.java calls out to an HtmlCleaner
// (that file itself is not present in the pack, only its call sites) and
// on the sibling example repo's script/style skip-depth walk
// (Xhy51-project_changes/extract.go), reworked onto golang.org/x/net/html's
// parse tree instead of regex-over-raw-HTML.
package htmlclean

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]struct{}{
	atom.Script:     {},
	atom.Style:      {},
	atom.Head:       {},
	atom.Noscript:   {},
	atom.Iframe:     {},
	atom.Object:     {},
	atom.Svg:        {},
	atom.Form:       {},
	atom.Nav:        {},
	atom.Figcaption: {},
}

// StripBlocks removes script/style/head/nav and other non-content block
// elements from body, returning the remaining HTML serialized back out —
// the "link-search HTML" that linkparse.ExtractLinks walks for anchors
// without also tripping over off-page markup.
func StripBlocks(body []byte) []byte {
	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return body
	}
	pruneBlocks(root)

	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		return body
	}
	return []byte(buf.String())
}

func pruneBlocks(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode {
			if _, blocked := blockElements[c.DataAtom]; blocked {
				n.RemoveChild(c)
				continue
			}
		}
		pruneBlocks(c)
	}
}

// StripTags walks body's parse tree and concatenates every text node,
// skipping script/style content, to produce plain text with all tags and
// entities removed — entities are already decoded by the HTML parser into
// their text-node runes, so no separate entity-stripping pass is needed.
func StripTags(body []byte) string {
	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var skipDepth int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			skipDepth++
			defer func() { skipDepth-- }()
		}
		if skipDepth == 0 && n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sb.String()
}
