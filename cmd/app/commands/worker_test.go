package commands

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type blockingRunner struct {
	started chan struct{}
}

func (r *blockingRunner) Start(ctx context.Context) error {
	close(r.started)
	<-ctx.Done()
	return ctx.Err()
}

type failingRunner struct {
	err error
}

func (r *failingRunner) Start(ctx context.Context) error {
	return r.err
}

func TestRunWorker(t *testing.T) {
	defer goleak.VerifyNone(t)
	logger := slog.New(slog.DiscardHandler)

	t.Run("Success_StopsOnCancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		outbox := &blockingRunner{started: make(chan struct{})}
		sweeper := &blockingRunner{started: make(chan struct{})}

		done := make(chan error, 1)
		go func() {
			done <- RunWorker(ctx, logger, map[string]Runner{"outbox": outbox, "sweeper": sweeper})
		}()

		<-outbox.started
		<-sweeper.started
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	})

	t.Run("Error_FailingRunnerStopsOthers", func(t *testing.T) {
		sweeper := &blockingRunner{started: make(chan struct{})}

		err := RunWorker(context.Background(), logger, map[string]Runner{
			"outbox":  &failingRunner{err: errors.New("database down")},
			"sweeper": sweeper,
		})

		require.Error(t, err)
		require.Contains(t, err.Error(), "outbox: database down")
	})
}
