package gateway

import (
	"fmt"

	"github.com/abhishek622/movieticket/pkg/apperr"
)

// ErrNotFound is returned when the upstream API does not know the movie.
// It matches both apperr.ErrFetch and apperr.ErrNotFound.
var ErrNotFound = fmt.Errorf("%w: %w", apperr.ErrFetch, apperr.ErrNotFound)
