package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"refermatch/internal/usecase"

	"go.uber.org/zap"
)

// Source yields tasks to process. *Queue satisfies it.
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (Task, error)
}

// Sink records run state transitions. *StatusStore satisfies it.
type Sink interface {
	Set(ctx context.Context, status RunStatus) error
}

// Worker drains the queue one task at a time, runs the matching pipeline for
// each, and records state transitions. One worker means one run in flight;
// independent runs only overlap across worker processes.
type Worker struct {
	source Source
	sink   Sink
	batch  *usecase.BatchMatch
	sync   usecase.RelationshipSyncUsecase
	notify usecase.NotifyUsecase
	logger *zap.Logger

	// Publish, when set, receives every status transition for broadcast.
	Publish func(status RunStatus)

	pollTimeout time.Duration
}

func NewWorker(
	source Source,
	sink Sink,
	batch *usecase.BatchMatch,
	sync usecase.RelationshipSyncUsecase,
	notify usecase.NotifyUsecase,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		source:      source,
		sink:        sink,
		batch:       batch,
		sync:        sync,
		notify:      notify,
		logger:      logger,
		pollTimeout: 5 * time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("task worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("task worker stopped")
			return
		default:
		}

		task, err := w.source.Dequeue(ctx, w.pollTimeout)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warn("dequeue failed", zap.Error(err))
			continue
		}

		w.Process(ctx, task)
	}
}

// Process executes one task to completion. A task failure is terminal for
// that run only.
func (w *Worker) Process(ctx context.Context, task Task) {
	w.logger.Info("task started",
		zap.String("run_id", task.RunID.String()),
		zap.String("kind", task.Kind),
	)
	w.transition(ctx, RunStatus{RunID: task.RunID, Kind: task.Kind, State: StateRunning})

	report, err := w.execute(ctx, task)
	if err != nil {
		w.logger.Warn("task failed",
			zap.String("run_id", task.RunID.String()),
			zap.String("kind", task.Kind),
			zap.Error(err),
		)
		w.transition(ctx, RunStatus{
			RunID: task.RunID,
			Kind:  task.Kind,
			State: StateFailed,
			Error: err.Error(),
		})
		return
	}

	w.logger.Info("task completed",
		zap.String("run_id", task.RunID.String()),
		zap.String("kind", task.Kind),
	)
	w.transition(ctx, RunStatus{
		RunID:  task.RunID,
		Kind:   task.Kind,
		State:  StateCompleted,
		Report: report,
	})
}

func (w *Worker) execute(ctx context.Context, task Task) (map[string]int, error) {
	switch task.Kind {
	case KindMatchPosting:
		report, err := w.runBatch(ctx, task, func(ctx context.Context) (usecase.BatchReport, error) {
			return w.batch.MatchPosting(ctx, task.PostingID)
		})
		if err != nil {
			return nil, err
		}
		return batchReportMap(report), nil

	case KindMatchProfile:
		report, err := w.runBatch(ctx, task, func(ctx context.Context) (usecase.BatchReport, error) {
			return w.batch.MatchProfile(ctx, task.ProfileID)
		})
		if err != nil {
			return nil, err
		}
		return batchReportMap(report), nil

	case KindSyncProfile:
		report, err := w.sync.SyncProfile(ctx, task.ProfileID)
		if err != nil {
			return nil, err
		}
		return syncReportMap(report), nil

	case KindSyncConnector:
		report, err := w.sync.SyncConnector(ctx, task.ConnectorID)
		if err != nil {
			return nil, err
		}
		return syncReportMap(report), nil

	case KindNotifyPosting:
		report, err := w.notify.FanoutPosting(ctx, task.PostingID)
		if err != nil {
			return nil, err
		}
		return notifyReportMap(report), nil

	case KindMatchAndNotify:
		batchReport, err := w.runBatch(ctx, task, func(ctx context.Context) (usecase.BatchReport, error) {
			return w.batch.MatchPosting(ctx, task.PostingID)
		})
		if err != nil {
			return nil, err
		}
		notifyReport, err := w.notify.FanoutPosting(ctx, task.PostingID)
		if err != nil {
			return nil, err
		}
		out := batchReportMap(batchReport)
		for k, v := range notifyReportMap(notifyReport) {
			out["notify_"+k] = v
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown task kind %q", task.Kind)
	}
}

// runBatch wires per-pair progress into the status record for the duration
// of one batch call. The worker is single-threaded, so the hook cannot be
// shared by two runs.
func (w *Worker) runBatch(ctx context.Context, task Task, fn func(ctx context.Context) (usecase.BatchReport, error)) (usecase.BatchReport, error) {
	w.batch.Progress = func(done, total int) {
		w.transition(ctx, RunStatus{
			RunID: task.RunID,
			Kind:  task.Kind,
			State: StateRunning,
			Done:  done,
			Total: total,
		})
	}
	defer func() { w.batch.Progress = nil }()

	return fn(ctx)
}

func (w *Worker) transition(ctx context.Context, status RunStatus) {
	if err := w.sink.Set(ctx, status); err != nil {
		w.logger.Warn("run status not stored",
			zap.String("run_id", status.RunID.String()),
			zap.Error(err),
		)
	}
	if w.Publish != nil {
		w.Publish(status)
	}
}

func batchReportMap(r usecase.BatchReport) map[string]int {
	return map[string]int{
		"attempted": r.Attempted,
		"succeeded": r.Succeeded,
		"failed":    r.Failed,
		"scored":    r.Scored,
	}
}

func syncReportMap(r usecase.SyncReport) map[string]int {
	return map[string]int{
		"examined": r.Examined,
		"created":  r.Created,
		"existing": r.Existing,
		"failed":   r.Failed,
	}
}

func notifyReportMap(r usecase.NotifyReport) map[string]int {
	return map[string]int{
		"connectors": r.Connectors,
		"notified":   r.Notified,
		"skipped":    r.Skipped,
		"failed":     r.Failed,
	}
}
