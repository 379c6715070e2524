package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/pairstream/pkg/log"
)

// minRestartDelay and maxRestartDelay bound the doubling backoff
// applied between task restarts. Declared as vars, not consts, so
// tests can shrink them instead of running on the real 1s-30s clock.
var (
	minRestartDelay = 1 * time.Second
	maxRestartDelay = 30 * time.Second
)

// Task is one long-running unit the supervisor owns: source consume,
// the dispatcher's pull loop, a notify-listener, a server's accept
// loop. Run must return promptly once ctx is canceled.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Supervisor starts every registered task and restarts any that return
// an error, with a doubling backoff capped at maxRestartDelay. A task
// that returns nil is also restarted (it finished unexpectedly, which
// for a standing pipeline task is never the intended outcome) but with
// the backoff reset, not advanced. Shutdown is cooperative: Run returns
// once ctx is canceled and every task has observed that and drained.
type Supervisor struct {
	tasks  []Task
	logger zerolog.Logger
}

// New creates an empty Supervisor.
func New() *Supervisor {
	return &Supervisor{logger: log.WithComponent("supervisor")}
}

// Add registers a task. Must be called before Run.
func (s *Supervisor) Add(name string, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, Task{Name: name, Run: run})
}

// Run starts every registered task and blocks until ctx is canceled
// and all tasks have returned.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, t := range s.tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			s.supervise(ctx, t)
		}(t)
	}
	wg.Wait()
}

func (s *Supervisor) supervise(ctx context.Context, t Task) {
	logger := s.logger.With().Str("task", t.Name).Logger()
	delay := minRestartDelay

	for {
		if ctx.Err() != nil {
			return
		}

		logger.Info().Msg("starting task")
		err := t.Run(ctx)

		if ctx.Err() != nil {
			logger.Info().Msg("task stopped for shutdown")
			return
		}

		if err != nil {
			logger.Error().Err(err).Dur("retry_delay", delay).Msg("task failed, restarting")
			if !sleepOrDone(ctx, delay) {
				return
			}
			delay *= 2
			if delay > maxRestartDelay {
				delay = maxRestartDelay
			}
			continue
		}

		logger.Warn().Msg("task finished unexpectedly, restarting")
		delay = minRestartDelay
		if !sleepOrDone(ctx, delay) {
			return
		}
	}
}

// sleepOrDone waits for d or ctx cancellation, whichever comes first.
// It reports whether the sleep completed (false means ctx was
// canceled first and the caller should stop).
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
