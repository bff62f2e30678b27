package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/medcircle/commons/api/internal/service"
)

// StrikeSweeper runs the periodic strike and suspension sweep
// - Deactivates strikes past their expiry and recomputes user standing
// - Releases timed suspensions whose end date has passed
type StrikeSweeper struct {
	strikeService *service.StrikeService
	interval      time.Duration
	logger        *slog.Logger
	stopCh        chan struct{}
	wg            sync.WaitGroup
	running       bool
	mu            sync.Mutex
}

// NewStrikeSweeper creates a new strike sweeper job
func NewStrikeSweeper(strikeService *service.StrikeService, interval time.Duration, logger *slog.Logger) *StrikeSweeper {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StrikeSweeper{
		strikeService: strikeService,
		interval:      interval,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the strike sweeper job
func (p *StrikeSweeper) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	p.logger.Info("strike sweeper started", "interval", p.interval)
}

// Stop gracefully stops the strike sweeper job
func (p *StrikeSweeper) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	p.logger.Info("strike sweeper stopped")
}

// run is the main loop
func (p *StrikeSweeper) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.sweep()
		case <-p.stopCh:
			return
		}
	}
}

func (p *StrikeSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := p.RunOnce(ctx); err != nil {
		p.logger.Error("strike sweep failed", "error", err)
	}
}

// RunOnce runs one sweep pass (for testing or manual trigger)
func (p *StrikeSweeper) RunOnce(ctx context.Context) error {
	expired, err := p.strikeService.ExpireStrikes(ctx)
	if err != nil {
		return err
	}
	released, err := p.strikeService.ExpireSuspensions(ctx)
	if err != nil {
		return err
	}
	if expired > 0 || released > 0 {
		p.logger.Info("strike sweep completed", "strikes_expired", expired, "suspensions_released", released)
	}
	return nil
}

// IsRunning returns whether the sweeper is running
func (p *StrikeSweeper) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
