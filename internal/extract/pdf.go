package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"prodfact/internal/model"
)

// extractPDF pulls text page by page and applies the attribute table plus a
// key:value line heuristic. PDFs (manuals, datasheets) carry spec tables far
// more often than feature prose, so there is no feature gate here beyond
// the shared classifier.
func (e *Extractor) extractPDF(body []byte, sourceURL string) (claims []model.Claim) {
	// The pdf package panics on some malformed files; a broken PDF must
	// yield zero claims, not a crash.
	defer func() {
		if r := recover(); r != nil {
			claims = nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		claims = append(claims, pdfTextClaims(text, sourceURL)...)
	}
	return claims
}

// pdfTextClaims applies the shared extraction heuristics to one page of
// plain text. The attribute table also runs over the whole page, since PDF
// text extraction frequently loses line breaks.
func pdfTextClaims(text, sourceURL string) []model.Claim {
	claims := matchPatterns(text, sourceURL)
	for _, raw := range strings.Split(text, "\n") {
		ln := strings.TrimSpace(raw)
		if ln == "" || len(ln) > 300 {
			continue
		}
		if key, value, ok := splitKeyValue(ln); ok {
			if c, ok := keyValueClaim(key, value, sourceURL); ok {
				claims = append(claims, c)
				continue
			}
		}
		claims = append(claims, matchPatterns(ln, sourceURL)...)
		claims = append(claims, classifyLine(ln, sourceURL)...)
	}
	return claims
}
