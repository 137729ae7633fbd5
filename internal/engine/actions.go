package engine

import (
	"fmt"

	"github.com/julianstephens/daystreak/internal/daylog"
	"github.com/julianstephens/daystreak/internal/models"
)

// Action names a user gesture on a day
type Action string

const (
	ActionAddRep             Action = "rep"
	ActionRemoveRep          Action = "unrep"
	ActionSkip               Action = "skip"
	ActionAddRepAndReplace   Action = "redo"
	ActionUncheckFromSkipped Action = "return"
	ActionHide               Action = "hide"
	ActionUnhide             Action = "unhide"
	ActionCheck              Action = "check"
	ActionUncheck            Action = "uncheck"
)

var transitions = map[Action]func(models.Habit, *daylog.Log, string) (Change, error){
	ActionAddRep:             AddRep,
	ActionRemoveRep:          RemoveRep,
	ActionSkip:               Skip,
	ActionAddRepAndReplace:   AddRepAndReplace,
	ActionUncheckFromSkipped: UncheckFromSkipped,
	ActionHide:               Hide,
	ActionUnhide:             Unhide,
	ActionCheck:              Check,
	ActionUncheck:            Uncheck,
}

// Apply runs the transition named by action
func Apply(action Action, h models.Habit, log *daylog.Log, date string) (Change, error) {
	fn, ok := transitions[action]
	if !ok {
		return Change{}, fmt.Errorf("unknown action %q", action)
	}
	return fn(h, log, date)
}
