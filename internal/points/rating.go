package points

import (
	"errors"
	"fmt"

	"github.com/dukerupert/choreboard/internal/model"
)

const (
	MinRating = 1
	MaxRating = 50
)

var ErrRatingRange = errors.New("rating must be between 1 and 50")

// ValidateRating rejects values outside MinRating..MaxRating.
func ValidateRating(p int) error {
	if p < MinRating || p > MaxRating {
		return fmt.Errorf("%w: got %d", ErrRatingRange, p)
	}
	return nil
}

// BasePoints is the rounded mean of the ratings, or the task default when
// nobody has rated it. Halves round up.
func BasePoints(defaultPoints int, ratings []model.Rating) int {
	if len(ratings) == 0 {
		return defaultPoints
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Points
	}
	return roundHalfUp(sum, len(ratings))
}

// roundHalfUp returns round(num/den) for non-negative num and positive den.
func roundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}
