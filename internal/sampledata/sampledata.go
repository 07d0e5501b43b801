// Package sampledata generates a small synthetic user table for smoke runs.
package sampledata

import (
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"

	"github.com/animus-labs/animus-baseline/internal/paths"
	"github.com/animus-labs/animus-baseline/internal/table"
)

const (
	DefaultUsers = 50
	DefaultSeed  = 42
	FileName     = "features.csv"
	Target       = "is_high_value"

	highValueTotal = 80.0
)

var countries = []string{"US", "CA", "GB"}

// Generate builds n user rows. The same (n, seed) always yields the same
// table.
func Generate(n int, seed int64) (*table.Table, error) {
	if n <= 0 {
		return nil, fmt.Errorf("user count must be positive, got %d", n)
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(n)))

	ids := make([]string, n)
	country := make([]string, n)
	orders := make([]string, n)
	avg := make([]string, n)
	total := make([]string, n)
	high := make([]string, n)
	for i := 0; i < n; i++ {
		nOrders := 1 + rng.IntN(9)
		amount := round2(math.Max(1, 10+3*rng.NormFloat64()))
		sum := round2(float64(nOrders) * amount)

		ids[i] = fmt.Sprintf("u%03d", i+1)
		country[i] = countries[rng.IntN(len(countries))]
		orders[i] = strconv.Itoa(nOrders)
		avg[i] = formatAmount(amount)
		total[i] = formatAmount(sum)
		high[i] = "0"
		if sum >= highValueTotal {
			high[i] = "1"
		}
	}
	return table.New(
		table.NewStringColumn("user_id", ids),
		table.NewColumn("country", country),
		table.NewColumn("n_orders", orders),
		table.NewColumn("avg_amount", avg),
		table.NewColumn("total_amount", total),
		table.NewColumn(Target, high),
	)
}

// Write generates the table and saves it as data/processed/features.csv
// under layout, creating the data directories on the way.
func Write(fs afero.Fs, layout paths.Layout, n int, seed int64) (string, error) {
	for _, dir := range layout.DataDirs() {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}
	t, err := Generate(n, seed)
	if err != nil {
		return "", err
	}
	out := filepath.Join(layout.Processed, FileName)
	if err := table.Save(fs, out, t); err != nil {
		return "", err
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
