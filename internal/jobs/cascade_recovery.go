package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/medcircle/commons/api/internal/service"
)

// CascadeRecovery resumes cascading deletions interrupted mid-saga. An
// intent still pending after the grace window belongs to a crashed cascade;
// replaying its remaining ids is safe because already-tombstoned nodes are
// skipped.
type CascadeRecovery struct {
	commentService *service.CommentService
	interval       time.Duration
	grace          time.Duration
	logger         *slog.Logger
	stopCh         chan struct{}
	wg             sync.WaitGroup
	running        bool
	mu             sync.Mutex
}

// NewCascadeRecovery creates a new cascade recovery job
func NewCascadeRecovery(commentService *service.CommentService, interval, grace time.Duration, logger *slog.Logger) *CascadeRecovery {
	if interval == 0 {
		interval = 1 * time.Minute
	}
	if grace == 0 {
		grace = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CascadeRecovery{
		commentService: commentService,
		interval:       interval,
		grace:          grace,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the cascade recovery job
func (p *CascadeRecovery) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	p.logger.Info("cascade recovery started", "interval", p.interval, "grace", p.grace)
}

// Stop gracefully stops the cascade recovery job
func (p *CascadeRecovery) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	p.logger.Info("cascade recovery stopped")
}

// run is the main loop
func (p *CascadeRecovery) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.recover()
		case <-p.stopCh:
			return
		}
	}
}

func (p *CascadeRecovery) recover() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := p.RunOnce(ctx); err != nil {
		p.logger.Error("cascade recovery failed", "error", err)
	}
}

// RunOnce runs one recovery pass (for testing or manual trigger)
func (p *CascadeRecovery) RunOnce(ctx context.Context) error {
	intents, err := p.commentService.PendingIntents(ctx, p.grace)
	if err != nil {
		return err
	}
	for _, intent := range intents {
		deleted, err := p.commentService.Resume(ctx, intent.ID)
		if err != nil {
			p.logger.Error("cascade resume failed", "intent_id", intent.ID, "error", err)
			continue
		}
		p.logger.Info("cascade resumed", "intent_id", intent.ID, "deleted", deleted)
	}
	return nil
}

// IsRunning returns whether the recovery job is running
func (p *CascadeRecovery) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
