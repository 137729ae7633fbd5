package rewards

import (
	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/daylog"
	"github.com/julianstephens/daystreak/internal/models"
)

// SettleBonuses walks the log oldest first and makes every record's Bonus
// agree with the running streak: a checked day whose streak length is a
// positive multiple of BonusEveryDays carries the bonus, any other day does
// not. Skipped days neither extend nor break the streak. A bonus keeps the
// amount it was first earned with. Returns the balance delta and the records
// that changed.
func SettleBonuses(h models.Habit, log *daylog.Log) (models.Cents, []models.DayRecord, error) {
	enabled := h.BonusReward != nil && h.BonusEveryDays > 0

	var (
		delta   models.Cents
		changed []models.DayRecord
		streak  int
	)
	for _, r := range log.Records() {
		earned := false
		switch r.State {
		case constants.DayChecked:
			streak++
			earned = enabled && streak%h.BonusEveryDays == 0
		case constants.DaySkipped:
		default:
			streak = 0
		}

		switch {
		case earned && r.Bonus == nil:
			r.Bonus = h.BonusReward.Ptr()
			delta += *r.Bonus
		case !earned && r.Bonus != nil:
			delta -= *r.Bonus
			r.Bonus = nil
		default:
			continue
		}
		if err := log.Put(r); err != nil {
			return 0, nil, err
		}
		changed = append(changed, r)
	}
	return delta, changed, nil
}
