// Package report renders scan results as the daily markdown report and the
// plain-text digest email.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Farouk858/product-radar/catalog"
	"github.com/Farouk858/product-radar/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

// NewMarker flags products first seen in this run.
const NewMarker = "✅"

// Section is the outcome of one brand scan as rendered in the report.
type Section struct {
	Brand string

	// Products are the merged candidates of the scan.
	Products []models.Product

	// Fresh are the products absent from the previous snapshot.
	Fresh []models.Product

	// Best is the highest scoring fresh product, if any.
	Best *models.Product

	Notes []string
}

// Markdown renders s as a report section headed "### <date> | <brand>".
func Markdown(date string, s Section) string {
	header := fmt.Sprintf("### %s | %s", date, s.Brand)
	if len(s.Products) == 0 {
		reason := strings.Join(s.Notes, "; ")
		if reason == "" {
			reason = "No reliable signals found"
		}
		return fmt.Sprintf("%s\nCould not verify current best-sellers or restocks with confidence ~ %s.\n", header, reason)
	}

	notes := strings.Join(s.Notes, ", ")
	if notes == "" {
		notes = "Heuristic selection"
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(productTable(s))
	b.WriteString("\n\n_Notes: ")
	b.WriteString(notes)
	b.WriteString("_\n")
	return b.String()
}

// Document joins rendered sections into the report file body.
func Document(sections []string) string {
	return strings.TrimSpace(strings.Join(sections, "\n\n")) + "\n"
}

// Write stores body as <dir>/<day>.md and returns the file path.
func Write(dir, day, body string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(dir, day+".md")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ByScore returns a copy of products sorted by descending score. Equal
// scores keep their order.
func ByScore(products []models.Product) []models.Product {
	sorted := append([]models.Product(nil), products...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// productTable renders the Product | Link | New? | Score | Status table.
func productTable(s Section) string {
	fresh := make(map[catalog.Key]struct{}, len(s.Fresh))
	for _, p := range s.Fresh {
		fresh[catalog.KeyOf(p)] = struct{}{}
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Product", "Link", "New?", "Score", "Status"})
	for _, p := range ByScore(s.Products) {
		marker := ""
		if _, ok := fresh[catalog.KeyOf(p)]; ok {
			marker = NewMarker
		}
		status := p.Status
		if status == "" {
			status = models.StatusUnknown
		}
		t.AppendRow(table.Row{p.Name, p.URL, marker, fmt.Sprintf("%.1f", p.Score), string(status)})
	}
	return t.RenderMarkdown()
}
