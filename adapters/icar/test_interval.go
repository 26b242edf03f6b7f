// Package icar implements the ICAR Test Interval Method (Procedure 2,
// Section 2: Computing of Accumulated Lactation Yield): an exact piecewise
// numerical integration of sparse test-day records into an estimated
// 305-day milk yield.
package icar

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"golact/internal"
	"golact/ports"
)

// maxDay is the inclusive day-in-milk cutoff; records beyond it are dropped.
const maxDay = 305

// DefaultLactationID is assigned to records without an identifier.
const DefaultLactationID = "1"

// Calculator computes 305-day yields per lactation group.
type Calculator struct {
	log *internal.Logger
}

// NewCalculator creates a Test Interval Method calculator.
func NewCalculator(log *internal.Logger) *Calculator {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Calculator{log: log}
}

// Estimate computes one row per distinct lactation identifier. Input row
// order does not matter; groups are sorted by day internally. Groups with
// fewer than two rows after the day cutoff are skipped (logged, not an
// error), so identifiers can be absent from the output. Groups are
// independent and computed concurrently.
func (c *Calculator) Estimate(ctx context.Context, records []ports.TestDayRecord) ([]ports.LactationYield, error) {
	groups := make(map[string][]ports.TestDayRecord)
	order := make([]string, 0)
	for _, r := range records {
		if r.Day > maxDay {
			continue
		}
		id := r.LactationID
		if id == "" {
			id = DefaultLactationID
		}
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], r)
	}

	totals := make([]float64, len(order))
	skipped := make([]bool, len(order))

	g, _ := errgroup.WithContext(ctx)
	for i, id := range order {
		rows := groups[id]
		g.Go(func() error {
			if len(rows) < 2 {
				c.log.Info("skipping lactation %s: not enough data points for interpolation", id)
				skipped[i] = true
				return nil
			}
			totals[i] = total305(rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]ports.LactationYield, 0, len(order))
	for i, id := range order {
		if skipped[i] {
			continue
		}
		out = append(out, ports.LactationYield{LactationID: id, Total: totals[i]})
	}
	return out, nil
}

// total305 applies the ICAR rule to one sorted lactation group:
// linear projection from calving to the first test day, trapezoids between
// consecutive test days, and linear projection from the last test day to
// day 305 (exclusive upper bound 306 for the day count).
func total305(rows []ports.TestDayRecord) float64 {
	sorted := make([]ports.TestDayRecord, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })

	first := sorted[0]
	last := sorted[len(sorted)-1]

	start := first.Day * first.Yield
	end := (306 - last.Day) * last.Yield

	intermediate := 0.0
	for i := 0; i < len(sorted)-1; i++ {
		width := sorted[i+1].Day - sorted[i].Day
		intermediate += width * (sorted[i].Yield + sorted[i+1].Yield) / 2
	}

	return start + intermediate + end
}
