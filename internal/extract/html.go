package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"prodfact/internal/model"
)

// extractHTML runs the structured path (schema.org Product markup), then the
// heuristic path (spec-section lines, tables, short paragraphs) over one
// HTML document.
func (e *Extractor) extractHTML(body []byte, sourceURL string) []model.Claim {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	claims := extractProductMarkup(doc, sourceURL)

	lines := collectLines(doc)
	for _, ln := range lines {
		if key, value, ok := splitKeyValue(ln.text); ok {
			if c, ok := keyValueClaim(key, value, sourceURL); ok {
				claims = append(claims, c)
				continue
			}
		}
		claims = append(claims, matchPatterns(ln.text, sourceURL)...)
		claims = append(claims, classifyLine(ln.text, sourceURL)...)
	}

	return claims
}

// line is one candidate text region from the DOM.
type line struct {
	text   string
	inSpec bool // Under a specification/feature heading
}

// boilerplate regions are discarded before matching.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"nav": true, "footer": true, "header": true, "aside": true,
	"form": true, "svg": true, "select": true, "button": true,
}

// collectLines isolates DOM regions likely to contain product detail:
// list items, table rows, headings, and short paragraphs. A heading that
// matches the spec-section vocabulary marks the lines that follow it.
func collectLines(doc *html.Node) []line {
	var lines []line
	inSpec := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipTags[n.Data] {
				return
			}
			switch n.Data {
			case "h1", "h2", "h3", "h4":
				text := nodeText(n)
				inSpec = specHeadingRe.MatchString(text)
				if wc := wordCount(text); wc >= 2 && wc <= 12 {
					lines = append(lines, line{text: text, inSpec: inSpec})
				}
				return
			case "li", "dt", "dd":
				if text := nodeText(n); text != "" && wordCount(text) <= 30 {
					lines = append(lines, line{text: text, inSpec: inSpec})
				}
				return
			case "tr":
				if text := rowText(n); text != "" {
					lines = append(lines, line{text: text, inSpec: inSpec})
				}
				return
			case "p":
				if text := nodeText(n); text != "" && wordCount(text) <= 40 {
					lines = append(lines, line{text: text, inSpec: inSpec})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return lines
}

// rowText renders a two-cell table row as "label: value" so the key/value
// path can pick it up; wider rows collapse to plain text.
func rowText(tr *html.Node) string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			if text := nodeText(c); text != "" {
				cells = append(cells, text)
			}
		}
	}
	if len(cells) == 2 {
		return cells[0] + ": " + cells[1]
	}
	return strings.Join(cells, " ")
}

// nodeText extracts the visible text of a subtree, whitespace-collapsed.
func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if buf.Len() > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// VisibleText renders the whole document as plain text, bounded to max
// bytes. The pipeline feeds it to the category guard before any claims are
// extracted from the page.
func VisibleText(body []byte, max int) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	text := nodeText(doc)
	if max > 0 && len(text) > max {
		text = text[:max]
	}
	return text
}

// splitKeyValue splits "Label: value" lines with a short, word-ish label.
func splitKeyValue(s string) (string, string, bool) {
	idx := strings.Index(s, ":")
	if idx <= 0 || idx > 40 {
		return "", "", false
	}
	label := strings.TrimSpace(s[:idx])
	value := strings.TrimSpace(s[idx+1:])
	if label == "" || value == "" || wordCount(label) > 4 {
		return "", "", false
	}
	return label, value, true
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
