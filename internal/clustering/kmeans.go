package clustering

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// KMeans is Lloyd's algorithm with k-means++ seeding from a fixed seed.
type KMeans struct {
	K       int
	Seed    int64
	MaxIter int
}

type Result struct {
	Centroids   [][]float64
	Assignments []int
	Sizes       []int
	Inertia     float64
	Iterations  int
}

func (k KMeans) Fit(ctx context.Context, x [][]float64) (Result, error) {
	if k.K < 1 {
		return Result{}, fmt.Errorf("k must be >= 1, got %d", k.K)
	}
	if len(x) < k.K {
		return Result{}, fmt.Errorf("need at least %d rows, got %d", k.K, len(x))
	}
	if len(x[0]) == 0 {
		return Result{}, errors.New("rows have no features")
	}
	maxIter := k.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}

	rng := rand.New(rand.NewPCG(uint64(k.Seed), uint64(k.K)))
	centroids := seedCentroids(rng, x, k.K)
	assign := make([]int, len(x))
	for i := range assign {
		assign[i] = -1
	}

	res := Result{}
	for iter := 1; iter <= maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res.Iterations = iter
		changed := false
		for i, row := range x {
			c, _ := nearest(centroids, row)
			if assign[i] != c {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		updateCentroids(centroids, x, assign)
	}

	res.Centroids = centroids
	res.Assignments = assign
	res.Sizes = make([]int, k.K)
	for i, row := range x {
		res.Sizes[assign[i]]++
		d := floats.Distance(row, centroids[assign[i]], 2)
		res.Inertia += d * d
	}
	return res, nil
}

func seedCentroids(rng *rand.Rand, x [][]float64, k int) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(x[rng.IntN(len(x))]))
	dist := make([]float64, len(x))
	for len(centroids) < k {
		total := 0.0
		for i, row := range x {
			_, d := nearest(centroids, row)
			dist[i] = d * d
			total += dist[i]
		}
		if total == 0 {
			centroids = append(centroids, clone(x[rng.IntN(len(x))]))
			continue
		}
		target := rng.Float64() * total
		pick := len(x) - 1
		for i, d := range dist {
			target -= d
			if target < 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, clone(x[pick]))
	}
	return centroids
}

func nearest(centroids [][]float64, row []float64) (int, float64) {
	best, bestDist := 0, -1.0
	for i, c := range centroids {
		d := floats.Distance(row, c, 2)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// updateCentroids moves each centroid to the mean of its members. A centroid
// with no members stays where it is.
func updateCentroids(centroids [][]float64, x [][]float64, assign []int) {
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, len(centroids[i]))
	}
	for i, row := range x {
		floats.Add(sums[assign[i]], row)
		counts[assign[i]]++
	}
	for i := range centroids {
		if counts[i] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[i]), sums[i])
		centroids[i] = sums[i]
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
