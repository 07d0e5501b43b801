package trainer

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// ErrEmptyTrain is returned when the train fraction leaves no training rows.
var ErrEmptyTrain = errors.New("train partition is empty")

// Split partitions row indices 0..n-1 into train and holdout sets. The train
// set holds floor(trainSize*n) rows. The permutation depends only on n and
// seed, so equal inputs always yield identical partitions.
func Split(n int, trainSize float64, seed int64) (train, holdout []int, err error) {
	if !(trainSize > 0 && trainSize < 1) {
		return nil, nil, fmt.Errorf("train size must be in (0, 1), got %v", trainSize)
	}
	if n <= 0 {
		return nil, nil, fmt.Errorf("%w: table has no rows", ErrEmptyTrain)
	}
	nTrain := int(math.Floor(trainSize * float64(n)))
	if nTrain == 0 {
		return nil, nil, fmt.Errorf("%w: %d rows at train size %v", ErrEmptyTrain, n, trainSize)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(n)))
	perm := rng.Perm(n)
	return perm[:nTrain], perm[nTrain:], nil
}
