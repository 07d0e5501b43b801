package trainer

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
)

const StrategyMostFrequent = "most_frequent"

// Model is a constant classifier that predicts the most frequent training
// label. It is the zero-skill floor every real model has to beat.
type Model struct {
	Strategy string
	Classes  []string
	Counts   []int
	Constant string
	Features []string
}

// FitMostFrequent counts labels and picks the most frequent one. Ties go to
// the smallest class, compared numerically when every class is a number.
func FitMostFrequent(labels []string, features []string) (*Model, error) {
	if len(labels) == 0 {
		return nil, errors.New("no training labels")
	}
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	classes := make([]string, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sortClasses(classes)

	m := &Model{
		Strategy: StrategyMostFrequent,
		Classes:  classes,
		Counts:   make([]int, len(classes)),
		Features: slices.Clone(features),
	}
	best := -1
	for i, c := range classes {
		m.Counts[i] = counts[c]
		if counts[c] > best {
			best = counts[c]
			m.Constant = c
		}
	}
	return m, nil
}

func sortClasses(classes []string) {
	numeric := true
	for _, c := range classes {
		if _, err := strconv.ParseFloat(c, 64); err != nil {
			numeric = false
			break
		}
	}
	if !numeric {
		slices.Sort(classes)
		return
	}
	slices.SortFunc(classes, func(a, b string) int {
		fa, _ := strconv.ParseFloat(a, 64)
		fb, _ := strconv.ParseFloat(b, 64)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	})
}

// Predict returns the constant prediction for n rows.
func (m *Model) Predict(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = m.Constant
	}
	return out
}

// Accuracy is the fraction of positions where predicted equals truth. An
// empty comparison has accuracy 0.
func Accuracy(predicted, truth []string) (float64, error) {
	if len(predicted) != len(truth) {
		return 0, fmt.Errorf("prediction length %d does not match truth length %d", len(predicted), len(truth))
	}
	if len(truth) == 0 {
		return 0, nil
	}
	hits := 0
	for i := range truth {
		if predicted[i] == truth[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth)), nil
}

// Save gob-encodes the model.
func (m *Model) Save(w io.Writer) error {
	if m == nil {
		return errors.New("model is nil")
	}
	return gob.NewEncoder(w).Encode(m)
}

// LoadModel decodes a model written by Save.
func LoadModel(r io.Reader) (*Model, error) {
	var m Model
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.Strategy != StrategyMostFrequent {
		return nil, fmt.Errorf("unsupported model strategy %q", m.Strategy)
	}
	return &m, nil
}
