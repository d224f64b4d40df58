package control

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/motioncore/logging"
)

func TestNewLoopFrequency(t *testing.T) {
	logger := logging.NewTestLogger(t)
	step := func(context.Context, float64) (bool, error) { return false, nil }

	for _, freq := range []float64{0, -1, 201} {
		_, err := NewLoop(logger, freq, nil, step)
		test.That(t, err, test.ShouldNotBeNil)
	}
	_, err := NewLoop(logger, 10, nil, nil)
	test.That(t, err, test.ShouldNotBeNil)

	l, err := NewLoop(logger, 200, nil, step)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Period(), test.ShouldEqual, 5*time.Millisecond)
}

func TestLoopRunsUntilDone(t *testing.T) {
	logger := logging.NewTestLogger(t)
	mock := clock.NewMock()

	var seen []float64
	l, err := NewLoop(logger, 10, mock, func(_ context.Context, dt float64) (bool, error) {
		seen = append(seen, dt)
		return len(seen) == 5, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldNotBeNil)
	defer l.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for l.Ticks() < 5 && ctx.Err() == nil {
		mock.Add(l.Period())
	}
	test.That(t, l.Wait(ctx), test.ShouldBeNil)
	test.That(t, l.Ticks(), test.ShouldEqual, 5)
	test.That(t, seen[0], test.ShouldAlmostEqual, 0.1)
}

func TestLoopStopsOnError(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	mock := clock.NewMock()

	l, err := NewLoop(logger, 50, mock, func(context.Context, float64) (bool, error) {
		return false, errors.New("motor unreachable")
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldBeNil)
	defer l.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for l.Ticks() < 1 && ctx.Err() == nil {
		mock.Add(l.Period())
	}
	err = l.Wait(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "motor unreachable")
	test.That(t, logs.FilterMessageSnippet("control step failed").Len(), test.ShouldEqual, 1)
}

func TestLoopStop(t *testing.T) {
	logger := logging.NewTestLogger(t)
	l, err := NewLoop(logger, 10, clock.NewMock(), func(context.Context, float64) (bool, error) {
		return false, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldBeNil)
	l.Stop()
	test.That(t, l.Wait(context.Background()), test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldNotBeNil)
	// Stopping twice is harmless.
	l.Stop()
}
