// Package sequence hands out the human-readable codes for units, sales and assets.
// Each code is backed by a monotonically increasing counter that never repeats a value,
// even across concurrent callers.
package sequence

import (
	"context"
	"fmt"
	"time"
)

// Counter names
const (
	UnitCodeCounter  = "unit_code"
	SaleFolioCounter = "sale_folio"
	AssetCodeCounter = "asset_code"
)

// Generator assigns codes. Each call consumes one counter value.
type Generator interface {
	NextUnitCode(ctx context.Context) (string, error)
	NextSaleFolio(ctx context.Context) (string, error)
	NextAssetCode(ctx context.Context) (string, error)
}

// Counter is an atomic, named, strictly increasing counter
type Counter interface {
	Next(ctx context.Context, name string) (int64, error)
}

// CodeGenerator formats counter values into codes
type CodeGenerator struct {
	counter Counter
	now     func() time.Time
}

func NewCodeGenerator(counter Counter) *CodeGenerator {
	return &CodeGenerator{counter: counter, now: time.Now}
}

func (g *CodeGenerator) NextUnitCode(ctx context.Context) (string, error) {
	n, err := g.next(ctx, UnitCodeCounter)
	if err != nil {
		return "", err
	}
	return FormatUnitCode(n), nil
}

func (g *CodeGenerator) NextSaleFolio(ctx context.Context) (string, error) {
	n, err := g.next(ctx, SaleFolioCounter)
	if err != nil {
		return "", err
	}
	return FormatSaleFolio(g.now(), n), nil
}

func (g *CodeGenerator) NextAssetCode(ctx context.Context) (string, error) {
	n, err := g.next(ctx, AssetCodeCounter)
	if err != nil {
		return "", err
	}
	return FormatAssetCode(n), nil
}

func (g *CodeGenerator) next(ctx context.Context, name string) (int64, error) {
	n, err := g.counter.Next(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to draw %s: %w", name, err)
	}
	return n, nil
}

func FormatUnitCode(n int64) string {
	return fmt.Sprintf("ART-%06d", n)
}

func FormatSaleFolio(day time.Time, n int64) string {
	return fmt.Sprintf("VTA-%s-%08d", day.Format("20060102"), n)
}

func FormatAssetCode(n int64) string {
	return fmt.Sprintf("SIS%03d", n)
}
