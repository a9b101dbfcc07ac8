package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Farouk858/product-radar/models"
	"github.com/google/go-cmp/cmp"
)

func sample() Section {
	capP := models.Product{Name: "Classic Cap", URL: "https://shop.test/products/cap", Score: 4, Status: models.StatusAvailable}
	tee := models.Product{Name: "Logo Tee", URL: "https://shop.test/products/tee", Score: 9, Status: models.StatusLowStock}
	return Section{
		Brand:    "Acme",
		Products: []models.Product{capP, tee},
		Fresh:    []models.Product{tee},
		Best:     &tee,
		Notes:    []string{"Page signals: bestseller"},
	}
}

func TestMarkdown(t *testing.T) {
	got := Markdown("2026-10-17", sample())

	if !strings.HasPrefix(got, "### 2026-10-17 | Acme\n\n|") {
		t.Errorf("unexpected heading:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n\n_Notes: Page signals: bestseller_\n") {
		t.Errorf("unexpected notes line:\n%s", got)
	}

	tee := strings.Index(got, "| Logo Tee | https://shop.test/products/tee | ✅ | 9.0 | low stock |")
	capRow := strings.Index(got, "| Classic Cap | https://shop.test/products/cap |  | 4.0 | available |")
	if tee < 0 || capRow < 0 {
		t.Fatalf("missing rows:\n%s", got)
	}
	if tee > capRow {
		t.Error("rows should be sorted by score descending")
	}
}

func TestMarkdown_DefaultNotes(t *testing.T) {
	s := sample()
	s.Notes = nil
	if got := Markdown("2026-10-17", s); !strings.Contains(got, "_Notes: Heuristic selection_") {
		t.Errorf("expected default notes, got:\n%s", got)
	}
}

func TestMarkdown_Empty(t *testing.T) {
	tests := []struct {
		name  string
		notes []string
		want  string
	}{
		{
			name: "no notes",
			want: "### 2026-10-17 | Acme\nCould not verify current best-sellers or restocks with confidence ~ No reliable signals found.\n",
		},
		{
			name:  "joined notes",
			notes: []string{"timeout on attempt 2 at base", "/collections/new error: navigation"},
			want: "### 2026-10-17 | Acme\nCould not verify current best-sellers or restocks with confidence ~ " +
				"timeout on attempt 2 at base; /collections/new error: navigation.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Markdown("2026-10-17", Section{Brand: "Acme", Notes: tt.notes})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Markdown mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDocument(t *testing.T) {
	got := Document([]string{"### a\nx\n", "### b\ny\n"})
	if diff := cmp.Diff("### a\nx\n\n\n### b\ny\n", got); diff != "" {
		t.Errorf("Document mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := Write(dir, "2026-10-17", "body\n")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if path != filepath.Join(dir, "2026-10-17.md") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "body\n" {
		t.Errorf("content = %q", data)
	}
}

func TestByScore_Stable(t *testing.T) {
	in := []models.Product{{Name: "a", Score: 1}, {Name: "b", Score: 2}, {Name: "c", Score: 1}}
	var names []string
	for _, p := range ByScore(in) {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, names); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if in[0].Name != "a" {
		t.Error("ByScore must not reorder its input")
	}
}

func TestEmail(t *testing.T) {
	section := EmailSection(sample())
	if !strings.HasPrefix(section, "Acme\n\n|") {
		t.Errorf("unexpected section start:\n%s", section)
	}
	if !strings.HasSuffix(section, "\n\nBest pick: Logo Tee (https://shop.test/products/tee) · Score 9.0 · Status low stock") {
		t.Errorf("unexpected best pick:\n%s", section)
	}

	noBest := sample()
	noBest.Best = nil
	if strings.Contains(EmailSection(noBest), "Best pick") {
		t.Error("best pick line should be omitted without a fresh product")
	}

	body := EmailBody([]string{"A", "B"})
	if !strings.HasPrefix(body, "Daily Product Radar\n\nA\n\nB\n\nLegend:\n") {
		t.Errorf("unexpected body start:\n%s", body)
	}
	if !strings.HasSuffix(body, "Full markdown report is stored in the repo under reports/.\n") {
		t.Errorf("unexpected body end:\n%s", body)
	}
	if Subject("2026-10-17") != "Product Radar ~ 2026-10-17" {
		t.Errorf("Subject = %q", Subject("2026-10-17"))
	}
}
