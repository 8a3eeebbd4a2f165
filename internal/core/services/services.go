package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

// Clock returns the current instant. Services never call time.Now directly.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// Completer is the text-completion gateway the coach talks to.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type StreakEnqueuer interface {
	Enqueue(goalID string)
}

// localize moves wake times into the goal's zone so clock parts are read
// the way the user entered them.
func localize(logs []domain.DailyLog, loc *time.Location) []domain.DailyLog {
	for i := range logs {
		if logs[i].ActualWakeTime != nil {
			t := logs[i].ActualWakeTime.In(loc)
			logs[i].ActualWakeTime = &t
		}
	}
	return logs
}
