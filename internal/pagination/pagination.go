package pagination

import (
	"errors"
	"fmt"

	"shareit/internal/models"
)

var ErrInvalidRange = errors.New("invalid pagination range")

// Window converts from/size request parameters into an offset/limit window.
// The offset is aligned down to a multiple of size, so from=5, size=3
// selects the second page (rows 3..5).
func Window(from, size int) (models.Page, error) {
	if from < 0 {
		return models.Page{}, fmt.Errorf("%w: from must be >= 0, got %d", ErrInvalidRange, from)
	}
	if size < 1 {
		return models.Page{}, fmt.Errorf("%w: size must be >= 1, got %d", ErrInvalidRange, size)
	}
	return models.Page{Offset: (from / size) * size, Limit: size}, nil
}
