package chapters

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/noveld/internal/providers"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Partition is a contiguous slice of the chapter list owned by one worker.
type Partition struct {
	Index int
	Items []providers.Chapter
}

// Split cuts items into workers contiguous partitions. The first
// len(items)%workers partitions hold one extra chapter; trailing partitions
// are empty when there are fewer chapters than workers.
func Split(items []providers.Chapter, workers int) ([]Partition, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrInvalidArgument, workers)
	}

	base, rem := len(items)/workers, len(items)%workers
	out := make([]Partition, workers)

	start := 0
	for i := range out {
		size := base
		if i < rem {
			size++
		}

		out[i] = Partition{
			Index: i,
			Items: items[start : start+size : start+size],
		}
		start += size
	}

	return out, nil
}
