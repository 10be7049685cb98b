// Package linkparse extracts and cleans absolute HTTP(S) links from HTML
// anchor tags, grounded on
// original_source/Project/src/LinkParser.java (absolute resolution against
// a base URL plus fragment stripping) and on the sibling example repo's
// use of golang.org/x/net/html for walking the parse tree
// (Xhy51-project_changes/extract.go, clean.go) rather than the original's
// regex-over-raw-HTML approach — the teacher pack treats the x/net/html
// parser as the idiomatic Go way to read an HTML document's structure.
package linkparse

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Clean strips the fragment from u and returns its string form. The
// original LinkParser additionally re-encodes the query string by round
// tripping through java.net.URI; Go's net/url already keeps the query
// string in its escaped form from parsing, so cleaning here is just
// fragment removal.
func Clean(u *url.URL) string {
	c := *u
	c.Fragment = ""
	return c.String()
}

// ExtractLinks walks the parsed HTML body and returns every absolute
// HTTP(S) link found in an anchor's href attribute, resolved against base,
// cleaned, and de-duplicated while preserving first-seen order.
func ExtractLinks(base *url.URL, body []byte) []string {
	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}

	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			for _, attr := range n.Attr {
				if strings.EqualFold(attr.Key, "href") {
					hrefs = append(hrefs, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	seen := make(map[string]struct{}, len(hrefs))
	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		abs := resolve(base, href)
		if abs == nil {
			continue
		}
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		cleaned := Clean(abs)
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		links = append(links, cleaned)
	}
	return links
}

func resolve(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	return base.ResolveReference(ref)
}
