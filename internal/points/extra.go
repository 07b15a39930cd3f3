package points

import (
	"errors"
	"fmt"
)

const (
	MinExtraPoints = -10
	MaxExtraPoints = 10
)

var ErrExtraPointsRange = errors.New("extra points must be between -10 and +10")

func ValidateExtraPoints(p int) error {
	if p < MinExtraPoints || p > MaxExtraPoints {
		return fmt.Errorf("%w: got %d", ErrExtraPointsRange, p)
	}
	return nil
}

// ExtraPointsMessage is the user-facing confirmation for an adjustment.
func ExtraPointsMessage(p int) string {
	switch {
	case p > 0:
		return fmt.Sprintf("+%d puntos extras otorgados!", p)
	case p < 0:
		return fmt.Sprintf("%d puntos de penalización aplicados", p)
	default:
		return "Puntos extras removidos"
	}
}
