package clustering

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/animus-labs/animus-baseline/internal/table"
)

func mustTable(t *testing.T, cols ...*table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(cols...)
	if err != nil {
		t.Fatalf("table.New() err=%v", err)
	}
	return tbl
}

func TestPreprocessorImputesAndEncodes(t *testing.T) {
	train := mustTable(t,
		table.NewColumn("amount", []string{"1", "3", "", "5"}),
		table.NewColumn("country", []string{"US", "CA", "US", "NA"}),
	)
	p, err := FitPreprocessor(train, []string{"amount", "country"})
	if err != nil {
		t.Fatalf("FitPreprocessor() err=%v", err)
	}
	if diff := cmp.Diff([]string{"amount", "country=CA", "country=US"}, p.OutputNames()); diff != "" {
		t.Fatalf("OutputNames() mismatch (-want +got):\n%s", diff)
	}

	x, err := p.Transform(train)
	if err != nil {
		t.Fatalf("Transform() err=%v", err)
	}
	// amount imputes to the median 3, giving [1 3 3 5]: mean 3, population std sqrt(2).
	std := math.Sqrt(2)
	want := [][]float64{
		{-2 / std, 0, 1},
		{0, 1, 0},
		{0, 0, 1},
		{2 / std, 0, 1},
	}
	if diff := cmp.Diff(want, x, cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })); diff != "" {
		t.Fatalf("Transform() mismatch (-want +got):\n%s", diff)
	}
}

func TestPreprocessorToleratesUnseenCategories(t *testing.T) {
	train := mustTable(t, table.NewColumn("country", []string{"US", "CA"}))
	p, err := FitPreprocessor(train, []string{"country"})
	if err != nil {
		t.Fatalf("FitPreprocessor() err=%v", err)
	}
	x, err := p.Transform(mustTable(t, table.NewColumn("country", []string{"GB"})))
	if err != nil {
		t.Fatalf("Transform() err=%v", err)
	}
	if diff := cmp.Diff([][]float64{{0, 0}}, x); diff != "" {
		t.Fatalf("unseen category mismatch (-want +got):\n%s", diff)
	}
}

func TestPreprocessorAllMissingNumeric(t *testing.T) {
	train := mustTable(t,
		table.NewColumn("score", []string{"1.5", "2.5"}),
		table.NewColumn("note", []string{"", ""}),
	)
	p, err := FitPreprocessor(train, []string{"score", "note"})
	if err != nil {
		t.Fatalf("FitPreprocessor() err=%v", err)
	}
	if _, err := p.Transform(train); err != nil {
		t.Fatalf("Transform() err=%v", err)
	}
}

func TestKMeansSeparatesBlobs(t *testing.T) {
	x := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1},
		{10, 10}, {10.1, 10}, {10, 10.1},
	}
	res, err := KMeans{K: 2, Seed: 42}.Fit(context.Background(), x)
	if err != nil {
		t.Fatalf("Fit() err=%v", err)
	}
	a := res.Assignments
	if a[0] != a[1] || a[1] != a[2] || a[3] != a[4] || a[4] != a[5] || a[0] == a[3] {
		t.Fatalf("Assignments=%v, want two blobs", a)
	}
	if diff := cmp.Diff([]int{3, 3}, res.Sizes); diff != "" {
		t.Fatalf("Sizes mismatch (-want +got):\n%s", diff)
	}

	again, err := KMeans{K: 2, Seed: 42}.Fit(context.Background(), x)
	if err != nil {
		t.Fatalf("Fit() err=%v", err)
	}
	if diff := cmp.Diff(res.Assignments, again.Assignments); diff != "" {
		t.Fatalf("k-means not deterministic (-first +second):\n%s", diff)
	}
}

func TestKMeansRejects(t *testing.T) {
	if _, err := (KMeans{K: 3}).Fit(context.Background(), [][]float64{{1}, {2}}); err == nil {
		t.Fatalf("Fit() expected error with fewer rows than k")
	}
	if _, err := (KMeans{K: 0}).Fit(context.Background(), [][]float64{{1}}); err == nil {
		t.Fatalf("Fit() expected error for k=0")
	}
}
