// Package control runs a fixed-rate control cycle in the background.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/motioncore/logging"
)

// MaxFrequency is the fastest rate a Loop may run at, in Hz.
const MaxFrequency = 200.0

// Step runs one control cycle. dt is the loop period in seconds. Returning done, or an error,
// ends the loop.
type Step func(ctx context.Context, dt float64) (done bool, err error)

// Loop calls a Step on every tick of a clock.
type Loop struct {
	logger    logging.Logger
	clock     clock.Clock
	frequency float64
	dt        time.Duration
	step      Step

	mu                      sync.Mutex
	ticker                  *clock.Ticker
	ticks                   int
	err                     error
	running                 bool
	finished                chan struct{}
	finishOnce              sync.Once
	activeBackgroundWorkers sync.WaitGroup
	cancelCtx               context.Context
	cancel                  context.CancelFunc
}

// NewLoop returns a loop that calls step at frequency Hz. A nil clk uses the wall clock.
func NewLoop(logger logging.Logger, frequency float64, clk clock.Clock, step Step) (*Loop, error) {
	if !(frequency > 0) || frequency > MaxFrequency {
		return nil, errors.Errorf("loop frequency must be within (0, %v] Hz, got %v", MaxFrequency, frequency)
	}
	if step == nil {
		return nil, errors.New("loop step cannot be nil")
	}
	if clk == nil {
		clk = clock.New()
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &Loop{
		logger:    logger,
		clock:     clk,
		frequency: frequency,
		dt:        time.Duration(float64(time.Second) / frequency),
		step:      step,
		finished:  make(chan struct{}),
		cancelCtx: cancelCtx,
		cancel:    cancel,
	}, nil
}

// Period returns the time between two steps.
func (l *Loop) Period() time.Duration {
	return l.dt
}

// Ticks returns how many steps have run.
func (l *Loop) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// Err returns the error that ended the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Start starts stepping in the background. A loop can only be started once.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("control loop is already running")
	}
	if l.cancelCtx.Err() != nil {
		return errors.New("control loop was stopped and cannot be restarted")
	}
	l.logger.Infof("running loop at %1.4f Hz (%v)", l.frequency, l.dt)
	l.ticker = l.clock.Ticker(l.dt)
	l.running = true

	ticker := l.ticker
	dt := l.dt.Seconds()
	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		for {
			select {
			case <-l.cancelCtx.Done():
				return
			case <-ticker.C:
			}
			done, err := l.step(l.cancelCtx, dt)
			l.mu.Lock()
			l.ticks++
			if err != nil {
				l.err = err
			}
			l.mu.Unlock()
			if err != nil {
				l.logger.Errorw("control step failed, stopping loop", "error", err)
				l.finish()
				return
			}
			if done {
				l.logger.Debug("control loop done")
				l.finish()
				return
			}
		}
	}, l.activeBackgroundWorkers.Done)
	return nil
}

func (l *Loop) finish() {
	l.finishOnce.Do(func() { close(l.finished) })
}

// Wait blocks until a step reports done or fails, the loop is stopped, or ctx is cancelled.
func (l *Loop) Wait(ctx context.Context) error {
	select {
	case <-l.finished:
		return l.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops the loop and waits for the running step to return.
func (l *Loop) Stop() {
	l.mu.Lock()
	running := l.running
	l.running = false
	l.mu.Unlock()
	l.cancel()
	if running {
		l.logger.Debug("closing loop")
		l.ticker.Stop()
		l.activeBackgroundWorkers.Wait()
	}
	l.finish()
}
