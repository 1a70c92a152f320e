package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"prodfact/internal/model"
)

// Renderer writes a consolidated record as JSON or Markdown.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the record as indented JSON.
func (r *Renderer) RenderJSON(record *model.ConsolidatedRecord, path string) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes the record as a Markdown fact sheet.
func (r *Renderer) RenderMarkdown(record *model.ConsolidatedRecord, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(record)), 0o644)
}

// Markdown builds the Markdown fact sheet.
func (r *Renderer) Markdown(record *model.ConsolidatedRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(record.Brand+" "+record.Product))
	fmt.Fprintf(&b, "Generated: %s\n\n", record.GeneratedAt.Format("2006-01-02 15:04 UTC"))

	if len(record.Specs) > 0 {
		b.WriteString("## Specifications\n\n")
		b.WriteString("| Attribute | Value | Confidence |\n")
		b.WriteString("|---|---|---|\n")
		for _, key := range specKeys(record.Specs) {
			sv := record.Specs[key]
			fmt.Fprintf(&b, "| %s | %s | %.2f |\n", strings.ReplaceAll(key, "_", " "), sv.Value, sv.Confidence)
		}
		b.WriteString("\n")
	}

	if len(record.Features) > 0 {
		b.WriteString("## Features\n\n")
		for _, e := range record.Features {
			marker := ""
			if e.Inferred {
				marker = " _(inferred)_"
			}
			fmt.Fprintf(&b, "- %s%s (%.2f)\n", e.Text, marker, e.Confidence)
		}
		b.WriteString("\n")
	}

	if len(record.Disclaimers) > 0 {
		b.WriteString("## Disclaimers\n\n")
		for _, e := range record.Disclaimers {
			fmt.Fprintf(&b, "- %s\n", e.Text)
		}
		b.WriteString("\n")
	}

	if len(record.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range record.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n")
		b.WriteString("Confidence reflects cross-source agreement, not ground truth. ")
		b.WriteString("Verify safety-relevant values against the manufacturer.\n")
	}

	return b.String()
}

// RenderSummary prints a one-screen summary to stdout.
func (r *Renderer) RenderSummary(record *model.ConsolidatedRecord) {
	fmt.Printf("\n%s\n", strings.TrimSpace(record.Brand+" "+record.Product))
	fmt.Printf("  Specs: %d  Features: %d  Disclaimers: %d\n",
		len(record.Specs), len(record.Features), len(record.Disclaimers))

	for _, key := range specKeys(record.Specs) {
		sv := record.Specs[key]
		fmt.Printf("  %-16s %-24s %.2f\n", key, sv.Value, sv.Confidence)
	}

	for _, w := range record.Warnings {
		fmt.Printf("  ! %s\n", w)
	}
}

func specKeys(specs map[string]model.SpecValue) []string {
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
