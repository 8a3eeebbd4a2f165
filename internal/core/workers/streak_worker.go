package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-rise/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

const queueSize = 100

type GoalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type LogRepository interface {
	ListByGoal(ctx context.Context, userID, goalID string) ([]domain.DailyLog, error)
}

type StreakJob struct {
	GoalID string
}

// StreakWorker keeps the denormalized streak counters on goals up to date
// after check-ins. Jobs are best effort: a full queue drops them.
type StreakWorker struct {
	goalRepo GoalRepository
	logRepo  LogRepository
	jobs     chan StreakJob
	now      func() time.Time
}

// NewStreakWorker uses time.Now when now is nil.
func NewStreakWorker(gRepo GoalRepository, lRepo LogRepository, now func() time.Time) *StreakWorker {
	if now == nil {
		now = time.Now
	}
	return &StreakWorker{
		goalRepo: gRepo,
		logRepo:  lRepo,
		jobs:     make(chan StreakJob, queueSize),
		now:      now,
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(goalID string) {
	select {
	case w.jobs <- StreakJob{GoalID: goalID}:
	default:
		log.Printf("Streak Worker queue full! Dropping job for goal %s", goalID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	goal, err := w.goalRepo.GetByID(ctx, job.GoalID)
	if err != nil {
		log.Printf("Worker Error fetching goal %s: %v", job.GoalID, err)
		return
	}

	logs, err := w.logRepo.ListByGoal(ctx, goal.UserID, goal.ID)
	if err != nil {
		log.Printf("Worker Error fetching logs for %s: %v", job.GoalID, err)
		return
	}

	today := w.now().In(goal.Location())
	current := analytics.CalculateStreak(logs, today)
	longest := analytics.LongestStreak(logs)

	if goal.CurrentStreak == current && goal.LongestStreak == longest {
		return
	}

	if err := w.goalRepo.UpdateStreaks(ctx, goal.ID, current, longest); err != nil {
		log.Printf("Worker Failed to update streak for %s: %v", job.GoalID, err)
		return
	}
	log.Printf("Streak updated for goal %s: Current=%d, Longest=%d", goal.ID, current, longest)
}
