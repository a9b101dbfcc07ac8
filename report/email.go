package report

import (
	"fmt"
	"strings"

	"github.com/Farouk858/product-radar/models"
)

const legend = "Legend:\n" +
	"- New? column shows " + NewMarker + " for products first seen since the previous report.\n" +
	"- Score is a heuristic based on how prominently the site surfaces the product " +
	"(new arrivals / bestsellers / badges / keywords).\n\n" +
	"Full markdown report is stored in the repo under reports/.\n"

// Subject is the digest email subject for day.
func Subject(day string) string {
	return "Product Radar ~ " + day
}

// EmailSection renders s for the digest email: the brand name, its product
// table and, when something new was found, the best pick.
func EmailSection(s Section) string {
	var b strings.Builder
	b.WriteString(s.Brand)
	b.WriteString("\n\n")
	b.WriteString(productTable(s))
	if s.Best != nil {
		b.WriteString("\n\n")
		b.WriteString(BestPick(*s.Best))
	}
	return b.String()
}

// BestPick renders the best pick line of a section.
func BestPick(p models.Product) string {
	status := p.Status
	if status == "" {
		status = models.StatusUnknown
	}
	return fmt.Sprintf("Best pick: %s (%s) · Score %.1f · Status %s", p.Name, p.URL, p.Score, status)
}

// EmailBody assembles the digest body from rendered email sections.
func EmailBody(sections []string) string {
	return "Daily Product Radar\n\n" + strings.Join(sections, "\n\n") + "\n\n" + legend
}
