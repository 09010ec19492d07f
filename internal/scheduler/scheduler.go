package scheduler

import (
	"log"
	"time"

	"github.com/abhinash-ops/Mind-canvus/internal/engine/actors"
	"github.com/abhinash-ops/Mind-canvus/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

const tickTimeout = 30 * time.Second

// Scheduler periodically asks the post actor to publish due scheduled
// posts. A failed tick is logged and the loop keeps running; the next tick
// re-evaluates everything still due.
type Scheduler struct {
	system    *actor.ActorSystem
	postActor *actor.PID
	metrics   *utils.MetricsCollector
	interval  time.Duration
	now       func() time.Time
	done      chan struct{}
}

func New(system *actor.ActorSystem, postActor *actor.PID, metrics *utils.MetricsCollector, interval time.Duration) *Scheduler {
	return &Scheduler{
		system:    system,
		postActor: postActor,
		metrics:   metrics,
		interval:  interval,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Start runs the tick loop until Stop is called. It runs one tick
// immediately so posts that came due while the process was down are
// published without waiting a full interval.
func (s *Scheduler) Start() {
	go func() {
		log.Printf("Scheduler: Started with interval %s", s.interval)
		s.Tick()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick()
			case <-s.done:
				log.Printf("Scheduler: Stopped")
				return
			}
		}
	}()
}

// Stop terminates the tick loop. Safe to call once.
func (s *Scheduler) Stop() {
	close(s.done)
}

// Tick performs one evaluation pass.
func (s *Scheduler) Tick() {
	future := s.system.Root.RequestFuture(s.postActor, &actors.PublishScheduledMsg{Now: s.now()}, tickTimeout)
	result, err := future.Result()
	if err != nil {
		log.Printf("Scheduler: Tick failed: %v", err)
		s.metrics.RecordSchedulerTick(0, true)
		return
	}

	switch res := result.(type) {
	case *actors.PublishResult:
		if res.Published > 0 || res.Failed > 0 {
			log.Printf("Scheduler: Published %d posts, %d failed", res.Published, res.Failed)
		}
		s.metrics.RecordSchedulerTick(res.Published, res.Failed > 0)
	case *utils.AppError:
		log.Printf("Scheduler: Tick failed: %v", res)
		s.metrics.RecordSchedulerTick(0, true)
	default:
		log.Printf("Scheduler: Unexpected tick response %T", result)
		s.metrics.RecordSchedulerTick(0, true)
	}
}
