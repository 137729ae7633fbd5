package constants

const (
	// Settings keys
	SettingTotalReward           = "total_reward_cents"
	SettingDefaultSkipOnceIn     = "default_skip_once_in"
	SettingDefaultBonusEveryDays = "default_bonus_every_days"
	SettingDefaultTargetPerDay   = "default_target_per_day"

	// Default Settings Values
	DefaultSkipOnceIn     = 7
	DefaultBonusEveryDays = 7
	DefaultTargetPerDay   = 1
)
