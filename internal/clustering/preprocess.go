// Package clustering is the unsupervised path: a preprocessing pipeline that
// tolerates missing values and unseen categories, feeding k-means. It shares
// no state with the classification baseline.
package clustering

import (
	"errors"
	"fmt"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/animus-labs/animus-baseline/internal/table"
)

type numericStep struct {
	Name   string
	Median float64
	Mean   float64
	Std    float64
}

type categoricalStep struct {
	Name       string
	Fill       string
	Categories []string
}

// Preprocessor imputes, scales and one-hot encodes a fixed column set.
// Numeric columns get median imputation and standardisation; categorical
// columns get most-frequent imputation and one-hot encoding where an unseen
// category encodes as all zeros.
type Preprocessor struct {
	numeric     []numericStep
	categorical []categoricalStep
}

// FitPreprocessor learns imputation and encoding parameters from t. Datetime
// columns are not supported and are skipped.
func FitPreprocessor(t *table.Table, columns []string) (*Preprocessor, error) {
	p := &Preprocessor{}
	for _, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", table.ErrNoColumn, name)
		}
		switch {
		case c.Kind == table.KindDatetime:
			continue
		case c.Kind.Numeric():
			step, err := fitNumeric(c)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
			p.numeric = append(p.numeric, step)
		default:
			p.categorical = append(p.categorical, fitCategorical(c))
		}
	}
	if len(p.numeric)+len(p.categorical) == 0 {
		return nil, errors.New("no usable feature columns")
	}
	return p, nil
}

func fitNumeric(c *table.Column) (numericStep, error) {
	present := make(stats.Float64Data, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := c.Float(i); ok {
			present = append(present, v)
		}
	}
	step := numericStep{Name: c.Name, Std: 1}
	if len(present) == 0 {
		return step, nil
	}
	median, err := stats.Median(present)
	if err != nil {
		return step, fmt.Errorf("median: %w", err)
	}
	step.Median = median

	imputed := make(stats.Float64Data, c.Len())
	for i := range imputed {
		if v, ok := c.Float(i); ok {
			imputed[i] = v
		} else {
			imputed[i] = median
		}
	}
	if step.Mean, err = stats.Mean(imputed); err != nil {
		return step, fmt.Errorf("mean: %w", err)
	}
	std, err := stats.StandardDeviationPopulation(imputed)
	if err != nil {
		return step, fmt.Errorf("std: %w", err)
	}
	if std > 0 {
		step.Std = std
	}
	return step, nil
}

func fitCategorical(c *table.Column) categoricalStep {
	counts := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		if !c.Missing(i) {
			counts[c.String(i)]++
		}
	}
	categories := make([]string, 0, len(counts))
	for v := range counts {
		categories = append(categories, v)
	}
	slices.Sort(categories)

	step := categoricalStep{Name: c.Name, Categories: categories}
	best := 0
	for _, v := range categories {
		if counts[v] > best {
			best = counts[v]
			step.Fill = v
		}
	}
	return step
}

// Width is the number of output features.
func (p *Preprocessor) Width() int {
	w := len(p.numeric)
	for _, step := range p.categorical {
		w += len(step.Categories)
	}
	return w
}

// OutputNames names the transformed features: numeric column names followed
// by column=category indicators.
func (p *Preprocessor) OutputNames() []string {
	out := make([]string, 0, p.Width())
	for _, step := range p.numeric {
		out = append(out, step.Name)
	}
	for _, step := range p.categorical {
		for _, cat := range step.Categories {
			out = append(out, step.Name+"="+cat)
		}
	}
	return out
}

// Transform encodes every row of t into a dense feature matrix.
func (p *Preprocessor) Transform(t *table.Table) ([][]float64, error) {
	numeric := make([]*table.Column, len(p.numeric))
	for i, step := range p.numeric {
		c, ok := t.Column(step.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", table.ErrNoColumn, step.Name)
		}
		numeric[i] = c
	}
	categorical := make([]*table.Column, len(p.categorical))
	for i, step := range p.categorical {
		c, ok := t.Column(step.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", table.ErrNoColumn, step.Name)
		}
		categorical[i] = c
	}

	width := p.Width()
	out := make([][]float64, t.Len())
	for row := range out {
		vec := make([]float64, width)
		col := 0
		for i, step := range p.numeric {
			v, ok := numeric[i].Float(row)
			if !ok {
				v = step.Median
			}
			vec[col] = (v - step.Mean) / step.Std
			col++
		}
		for i, step := range p.categorical {
			v := step.Fill
			if !categorical[i].Missing(row) {
				v = categorical[i].String(row)
			}
			if j, found := slices.BinarySearch(step.Categories, v); found {
				vec[col+j] = 1
			}
			col += len(step.Categories)
		}
		out[row] = vec
	}
	return out, nil
}
