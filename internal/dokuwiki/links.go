package dokuwiki

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// firstParagraph returns the first <p> whose text is not blank
func firstParagraph(root *html.Node) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.P && strings.TrimSpace(textContent(n)) != "" {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// hrefs collects the href of every <a> below n in document order.
// Anchors without one are skipped.
func hrefs(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					out = append(out, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// subPageTargets keeps local links, reduced to their last namespace
// segment with underscores shown as spaces.
func subPageTargets(links []string) []string {
	out := make([]string, 0, len(links))
	for _, href := range links {
		if href == "" || strings.HasPrefix(href, "http") {
			continue
		}
		id := href
		if i := strings.LastIndex(id, ":"); i >= 0 {
			id = id[i+1:]
		}
		if strings.Contains(id, ":") {
			continue
		}
		out = append(out, strings.ReplaceAll(id, "_", " "))
	}
	return out
}

// dedupeLinks drops links whose normalized id was already seen, keeping
// the first spelling.
func dedupeLinks(links []string, normalize func(string) string) []string {
	seen := make(map[string]bool, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		key := normalize(link)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, link)
	}
	return out
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
