// Package testkit provides synthetic lactation data and in-memory fakes
// for tests.
package testkit

import (
	"context"
	"math/rand"
	"sync"

	"golact/domain/model"
	"golact/ports"
)

// SyntheticLactation generates daily yields from a known curve with seeded
// gaussian noise, so fitting tests can check parameter recovery against the
// generating truth.
func SyntheticLactation(name model.Name, params []float64, days int, noiseSD float64, seed int64) ([]float64, []float64, error) {
	spec, err := model.Parse(string(name))
	if err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, days)
	ys := make([]float64, days)
	for i := 0; i < days; i++ {
		t := float64(i + 1)
		xs[i] = t
		ys[i] = spec.Eval(t, params) + rng.NormFloat64()*noiseSD
	}
	return xs, ys, nil
}

// TestDayRecords samples a synthetic lactation at sparse test days, the way
// monthly milk recording would observe it.
func TestDayRecords(name model.Name, params []float64, testDays []float64, lactationID string, seed int64) ([]ports.TestDayRecord, error) {
	spec, err := model.Parse(string(name))
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	records := make([]ports.TestDayRecord, 0, len(testDays))
	for _, day := range testDays {
		records = append(records, ports.TestDayRecord{
			Day:         day,
			Yield:       spec.Eval(day, params) + rng.NormFloat64()*0.2,
			LactationID: lactationID,
		})
	}
	return records, nil
}

// InMemoryYieldRepository implements ports.YieldRepository with map storage.
type InMemoryYieldRepository struct {
	mu      sync.RWMutex
	records []ports.TestDayRecord
	yields  map[string]float64
	order   []string
}

func NewInMemoryYieldRepository() *InMemoryYieldRepository {
	return &InMemoryYieldRepository{yields: make(map[string]float64)}
}

func (r *InMemoryYieldRepository) SaveRecords(ctx context.Context, records []ports.TestDayRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	return nil
}

func (r *InMemoryYieldRepository) SaveYields(ctx context.Context, yields []ports.LactationYield) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, y := range yields {
		if _, seen := r.yields[y.LactationID]; !seen {
			r.order = append(r.order, y.LactationID)
		}
		r.yields[y.LactationID] = y.Total
	}
	return nil
}

func (r *InMemoryYieldRepository) ListYields(ctx context.Context, limit int) ([]ports.LactationYield, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ports.LactationYield, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, ports.LactationYield{LactationID: id, Total: r.yields[id]})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Records returns everything saved so far.
func (r *InMemoryYieldRepository) Records() []ports.TestDayRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ports.TestDayRecord, len(r.records))
	copy(out, r.records)
	return out
}
