package chapters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

// Filter applies an optional 1-based range ("5-12") or list ("1,3,5")
// selection. Range wins when both are set; neither returns all.
func Filter(all []providers.Chapter, rng, list string) ([]providers.Chapter, error) {
	if rng != "" {
		return FilterRange(all, rng)
	}
	if list != "" {
		return FilterList(all, list)
	}

	return all, nil
}

func FilterRange(all []providers.Chapter, rng string) ([]providers.Chapter, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: range %q must look like 5-12", ErrInvalidArgument, rng)
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%w: range %q is not numeric", ErrInvalidArgument, rng)
	}
	if start <= 0 || start > end || end > len(all) {
		return nil, fmt.Errorf("%w: range %q outside 1-%d", ErrInvalidArgument, rng, len(all))
	}

	return all[start-1 : end], nil
}

// FilterList keeps the listed chapters in reading order, dropping
// duplicates and indices that are out of bounds.
func FilterList(all []providers.Chapter, list string) ([]providers.Chapter, error) {
	keep := make([]bool, len(all))

	for _, n := range strings.Split(list, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}

		idx, err := atoi(n)
		if err != nil {
			return nil, fmt.Errorf("%w: list entry %q is not numeric", ErrInvalidArgument, n)
		}
		if idx > 0 && idx <= len(all) {
			keep[idx-1] = true
		}
	}

	out := []providers.Chapter{}
	for i, ch := range all {
		if keep[i] {
			out = append(out, ch)
		}
	}

	return out, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
