package utils

import (
	"fmt"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

// IsActiveDay reports whether candidateDate is an active day for a pattern
// anchored at creationDate. Every pattern is a pure function of the elapsed
// day count from the anchor, so re-evaluating any date always gives the same
// answer. A nil pattern behaves as Daily.
func IsActiveDay(pattern models.Recurrence, creationDate, candidateDate string) (bool, error) {
	switch p := pattern.(type) {
	case nil, models.Daily:
		return true, nil
	case models.ByWeek:
		weekday, err := DayOfWeek(candidateDate)
		if err != nil {
			return false, err
		}
		for _, d := range p.Days {
			if d == weekday {
				return true, nil
			}
		}
		return false, nil
	case models.Custom:
		if p.Active < 0 || p.Off < 0 {
			return false, &apperrors.InvalidPatternError{Reason: fmt.Sprintf("negative run length %d/%d", p.Active, p.Off)}
		}
		period := p.Active + p.Off
		if period == 0 {
			return false, &apperrors.InvalidPatternError{Reason: "custom pattern period is zero"}
		}
		diff, err := DaysBetweenDates(creationDate, candidateDate)
		if err != nil {
			return false, err
		}
		return mod(diff, period) < p.Active, nil
	case models.Transformer:
		if len(p.Flags) == 0 {
			return false, &apperrors.InvalidPatternError{Reason: "transformer pattern has no flags"}
		}
		diff, err := DaysBetweenDates(creationDate, candidateDate)
		if err != nil {
			return false, err
		}
		return p.Flags[mod(diff, len(p.Flags))], nil
	default:
		return false, &apperrors.InvalidPatternError{Reason: fmt.Sprintf("unknown pattern %T", pattern)}
	}
}

// mod is the non-negative remainder, so dates before the anchor keep the cycle phase
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
