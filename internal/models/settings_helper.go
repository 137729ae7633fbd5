package models

import (
	"fmt"

	"github.com/julianstephens/daystreak/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTotalReward:
			var total int64
			if _, err := fmt.Sscanf(value, "%d", &total); err != nil {
				return Settings{}, fmt.Errorf("parsing total_reward_cents: %w", err)
			}
			settings.TotalReward = Cents(total)
		case constants.SettingDefaultSkipOnceIn:
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultSkipOnceIn); err != nil {
				return Settings{}, fmt.Errorf("parsing default_skip_once_in: %w", err)
			}
		case constants.SettingDefaultBonusEveryDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultBonusEveryDays); err != nil {
				return Settings{}, fmt.Errorf("parsing default_bonus_every_days: %w", err)
			}
		case constants.SettingDefaultTargetPerDay:
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultTargetPerDay); err != nil {
				return Settings{}, fmt.Errorf("parsing default_target_per_day: %w", err)
			}
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTotalReward:           fmt.Sprintf("%d", int64(settings.TotalReward)),
		constants.SettingDefaultSkipOnceIn:     fmt.Sprintf("%d", settings.DefaultSkipOnceIn),
		constants.SettingDefaultBonusEveryDays: fmt.Sprintf("%d", settings.DefaultBonusEveryDays),
		constants.SettingDefaultTargetPerDay:   fmt.Sprintf("%d", settings.DefaultTargetPerDay),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
// The balance is left alone: zero is a valid balance.
func ApplyDefaultSettings(settings *Settings) {
	if settings.DefaultSkipOnceIn == 0 {
		settings.DefaultSkipOnceIn = constants.DefaultSkipOnceIn
	}
	if settings.DefaultBonusEveryDays == 0 {
		settings.DefaultBonusEveryDays = constants.DefaultBonusEveryDays
	}
	if settings.DefaultTargetPerDay == 0 {
		settings.DefaultTargetPerDay = constants.DefaultTargetPerDay
	}
}
