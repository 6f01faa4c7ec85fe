package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/search-engine-core/pkg/failure"
	"golang.org/x/net/html"
)

// Page is the normalized extraction output the crawler and content
// storage layer consume: title and description are best-effort (either
// may be empty), textContent is the plain-text rendering of the
// isolated content node, and outboundLinks are absolute URLs resolved
// against the page's own address.
type Page struct {
	Title        string
	Description  string
	TextContent  string
	OutboundLinks []string
}

// ExtractPage runs the three-layer DOM isolation DomExtractor already
// implements and reduces the result to the (title?, description?,
// textContent, outboundLinks) tuple the crawler stores per fetched page.
func ExtractPage(d *DomExtractor, sourceURL url.URL, htmlByte []byte) (Page, failure.ClassifiedError) {
	result, err := d.Extract(sourceURL, htmlByte)
	if err != nil {
		return Page{}, err
	}

	gqDoc := goquery.NewDocumentFromNode(result.DocumentRoot)

	page := Page{
		Title:       extractTitle(gqDoc),
		Description: extractDescription(gqDoc),
		TextContent: normalizeWhitespace(nodeText(result.ContentNode)),
	}
	page.OutboundLinks = extractOutboundLinks(result.ContentNode, sourceURL)

	return page, nil
}

func extractTitle(doc *goquery.Document) string {
	if og := doc.Find(`meta[property="og:title"]`).First(); og.Length() > 0 {
		if v, ok := og.Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractDescription(doc *goquery.Document) string {
	if og := doc.Find(`meta[property="og:description"]`).First(); og.Length() > 0 {
		if v, ok := og.Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if meta := doc.Find(`meta[name="description"]`).First(); meta.Length() > 0 {
		if v, ok := meta.Attr("content"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// nodeText walks node and its children, joining every text node with a
// single space, skipping <script> and <style> content.
func nodeText(node *html.Node) string {
	if node == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return sb.String()
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// extractOutboundLinks collects every <a href> under node, resolves it
// against base, and returns the absolute http(s) URLs, deduplicated in
// encounter order.
func extractOutboundLinks(node *html.Node, base url.URL) []string {
	if node == nil {
		return nil
	}
	seen := map[string]bool{}
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := strings.TrimSpace(attr.Val)
				if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
					continue
				}
				resolved, err := base.Parse(href)
				if err != nil {
					continue
				}
				if resolved.Scheme != "http" && resolved.Scheme != "https" {
					continue
				}
				resolved.Fragment = ""
				abs := resolved.String()
				if !seen[abs] {
					seen[abs] = true
					links = append(links, abs)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return links
}
