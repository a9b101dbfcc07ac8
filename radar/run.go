package radar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Farouk858/product-radar/brands"
	"github.com/Farouk858/product-radar/models"
	"github.com/Farouk858/product-radar/report"
	"github.com/Farouk858/product-radar/state"
	"github.com/Farouk858/product-radar/webhook"
	"golang.org/x/sync/errgroup"
)

// BrandResult is one brand's outcome within a run.
type BrandResult struct {
	BrandScan
	Fresh []models.Product `json:"new"`
	Best  *models.Product  `json:"best,omitempty"`
}

// Summary describes a finished run.
type Summary struct {
	Day        string        `json:"day"`
	ReportPath string        `json:"report_path"`
	Brands     []BrandResult `json:"brands"`
}

// NewCount returns the number of new products across all brands.
func (s *Summary) NewCount() int {
	n := 0
	for _, b := range s.Brands {
		n += len(b.Fresh)
	}
	return n
}

// Run performs a full digest run: every brand in the brand list is scanned,
// diffed against the stored snapshot and rendered into the day's report.
// The snapshot is saved once after all brands finish; a cancelled run
// writes neither report nor snapshot. Email and webhook
// failures are returned after the report and snapshot are written.
func (r *Radar) Run(ctx context.Context) (*Summary, error) {
	list, err := brands.Load(r.cfg.Paths.Brands)
	if err != nil {
		return nil, fmt.Errorf("load brands: %w", err)
	}
	snap, err := state.Load(r.cfg.Paths.State)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	day := r.now().UTC().Format(time.DateOnly)
	slog.Info("radar run started", "day", day, "brands", len(list), "workers", max(r.cfg.Run.Workers, 1))

	scans := make([]BrandScan, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Run.Workers, 1))
	for i, b := range list {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scans[i] = r.ScanBrand(gctx, b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan brands: %w", err)
	}
	// Scans swallow cancellation into notes; an interrupted run must not
	// replace stored history with empty lists.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan brands: %w", err)
	}

	summary := &Summary{Day: day}
	var reportSections, emailSections []string
	for _, scan := range scans {
		fresh := state.DiffNew(snap[scan.Brand], scan.Products)
		result := BrandResult{BrandScan: scan, Fresh: fresh}
		if best, ok := state.ChooseBest(fresh); ok {
			result.Best = &best
		}
		summary.Brands = append(summary.Brands, result)

		section := report.Section{
			Brand:    scan.Brand,
			Products: scan.Products,
			Fresh:    fresh,
			Best:     result.Best,
			Notes:    scan.Notes,
		}
		reportSections = append(reportSections, report.Markdown(day, section))
		emailSections = append(emailSections, report.EmailSection(section))

		snap.Replace(scan.Brand, scan.Products)
	}

	path, err := report.Write(r.cfg.Paths.Reports, day, report.Document(reportSections))
	if err != nil {
		return nil, err
	}
	summary.ReportPath = path

	if err := state.Save(r.cfg.Paths.State, snap); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	slog.Info("report written", "path", path, "new", summary.NewCount())

	var notifyErr error
	if r.mailer != nil {
		notifyErr = r.mailer.Send(report.Subject(day), report.EmailBody(emailSections))
	}
	if err := r.hook.Send(ctx, digestEvent(summary, r.now())); err != nil {
		notifyErr = errors.Join(notifyErr, err)
	}
	return summary, notifyErr
}

// Digest is the data of a digest.completed webhook event.
type Digest struct {
	Day        string        `json:"day"`
	ReportPath string        `json:"report_path"`
	New        int           `json:"new"`
	Brands     []BrandDigest `json:"brands"`
}

// BrandDigest summarises one brand in a Digest.
type BrandDigest struct {
	Brand    string          `json:"brand"`
	Products int             `json:"products"`
	New      int             `json:"new"`
	Best     *models.Product `json:"best,omitempty"`
	Notes    []string        `json:"notes,omitempty"`
}

func digestEvent(s *Summary, at time.Time) *webhook.Event {
	d := Digest{Day: s.Day, ReportPath: s.ReportPath, New: s.NewCount()}
	for _, b := range s.Brands {
		d.Brands = append(d.Brands, BrandDigest{
			Brand:    b.Brand,
			Products: len(b.Products),
			New:      len(b.Fresh),
			Best:     b.Best,
			Notes:    b.Notes,
		})
	}
	return &webhook.Event{
		Type:      webhook.EventDigestCompleted,
		RunID:     s.Day,
		Timestamp: at.Unix(),
		Data:      d,
	}
}
