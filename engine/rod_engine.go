package engine

import (
	"context"
	"fmt"

	"github.com/Farouk858/product-radar/models"
)

// RodFetchFunc is implemented by the browser scraper. It is injected from
// the command layer so engine never imports scraper.
type RodFetchFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

// RodEngine is a browser engine backed by a RodFetchFunc. With stealth
// forced it identifies as "rod-stealth".
type RodEngine struct {
	fetchFunc    RodFetchFunc
	forceStealth bool
	name         string
}

// NewRodEngine creates a RodEngine.
func NewRodEngine(fetchFunc RodFetchFunc, forceStealth bool) *RodEngine {
	name := "rod"
	if forceStealth {
		name = "rod-stealth"
	}
	return &RodEngine{
		fetchFunc:    fetchFunc,
		forceStealth: forceStealth,
		name:         name,
	}
}

func (e *RodEngine) Name() string { return e.name }

func (e *RodEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.fetchFunc == nil {
		return nil, models.NewFetchError(models.ErrCodeBrowserCrash, e.name+": browser not configured", nil)
	}

	r := *req
	if e.forceStealth {
		r.Stealth = true
	}

	result, err := e.fetchFunc(ctx, &r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.name, Categorize(err, models.ErrCodeNavigation, "browser fetch failed"))
	}

	result.EngineName = e.name
	return result, nil
}
