package models

// Settings is the per-installation singleton (UserSettings): the cached reward
// balance and the defaults applied to new habits.
type Settings struct {
	TotalReward           Cents `json:"total_reward_cents"`       // cached running balance
	DefaultSkipOnceIn     int   `json:"default_skip_once_in"`     // sliding window for new habits
	DefaultBonusEveryDays int   `json:"default_bonus_every_days"` // streak length between bonuses
	DefaultTargetPerDay   int   `json:"default_target_per_day"`   // repetitions per day for new habits
}
