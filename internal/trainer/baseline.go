package trainer

import (
	"context"
	"errors"
	"fmt"

	"github.com/animus-labs/animus-baseline/internal/table"
)

// Input is what a trainer needs for one fit. OutputDir is where a trainer may
// write auxiliary output; trainers must not write relative to the process
// working directory.
type Input struct {
	Features  *table.Table
	Target    *table.Column
	TrainSize float64
	Seed      int64
	OutputDir string
}

type Result struct {
	Model       *Model
	Accuracy    float64
	TrainRows   []int
	HoldoutRows []int
}

// Baseline fits the majority-class model and scores it on the holdout.
type Baseline struct{}

func (Baseline) Fit(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if in.Features == nil || in.Target == nil {
		return Result{}, errors.New("features and target are required")
	}
	if in.Target.Len() != in.Features.Len() {
		return Result{}, fmt.Errorf("target has %d rows, features have %d", in.Target.Len(), in.Features.Len())
	}

	train, holdout, err := Split(in.Target.Len(), in.TrainSize, in.Seed)
	if err != nil {
		return Result{}, err
	}

	model, err := FitMostFrequent(labels(in.Target, train), in.Features.Names())
	if err != nil {
		return Result{}, err
	}
	acc, err := Accuracy(model.Predict(len(holdout)), labels(in.Target, holdout))
	if err != nil {
		return Result{}, err
	}
	return Result{
		Model:       model,
		Accuracy:    acc,
		TrainRows:   train,
		HoldoutRows: holdout,
	}, nil
}

func labels(c *table.Column, rows []int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = c.String(r)
	}
	return out
}
