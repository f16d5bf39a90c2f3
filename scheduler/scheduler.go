package scheduler

import (
	"context"
	"log"
	"time"
)

// PublishFunc attempts to publish due posts and reports how many it tried.
type PublishFunc func(ctx context.Context) (int, error)

// Scheduler periodically fires a publish callback for due scheduled posts.
// It runs in its own goroutine, started from main.
type Scheduler struct {
	interval time.Duration
	publish  PublishFunc
}

func New(interval time.Duration, publish PublishFunc) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{interval: interval, publish: publish}
}

// Start blocks until ctx is cancelled, ticking at the configured interval.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("Scheduler running every %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	n, err := s.publish(tickCtx)
	if err != nil {
		log.Printf("Scheduler tick failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Scheduler attempted %d due post(s)", n)
	}
}
