package handler

import (
	"errors"
	"time"

	"refermatch/internal/delivery/http/dto"
	"refermatch/internal/delivery/http/middleware"
	"refermatch/internal/pkg/response"
	"refermatch/internal/tasks"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunHandler turns HTTP triggers into queued background runs. The work itself
// happens in the worker; callers poll GET /runs/:run_id or subscribe on the
// websocket for progress.
type RunHandler struct {
	queue  *tasks.Queue
	runs   *tasks.StatusStore
	logger *zap.Logger
}

func NewRunHandler(queue *tasks.Queue, runs *tasks.StatusStore, logger *zap.Logger) *RunHandler {
	return &RunHandler{queue: queue, runs: runs, logger: logger}
}

func (h *RunHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	postings := r.Group("/postings")
	postings.Post("/:posting_id/match", h.enqueuePosting(tasks.KindMatchPosting))
	postings.Post("/:posting_id/notify", h.enqueuePosting(tasks.KindNotifyPosting))
	postings.Post("/:posting_id/match-and-notify", h.enqueuePosting(tasks.KindMatchAndNotify))

	profiles := r.Group("/profiles")
	profiles.Post("/:profile_id/match", h.enqueueProfile(tasks.KindMatchProfile))
	profiles.Post("/:profile_id/sync-relationships", h.enqueueProfile(tasks.KindSyncProfile))

	connectors := r.Group("/connectors")
	connectors.Post("/:connector_id/sync-relationships", h.enqueueConnector(tasks.KindSyncConnector))

	runs := r.Group("/runs")
	runs.Get("/:run_id", h.GetRun)
}

func (h *RunHandler) enqueuePosting(kind string) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("posting_id"))
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid posting id", nil, err)
		}
		task := tasks.NewTask(kind)
		task.PostingID = id
		return h.enqueue(c, task)
	}
}

func (h *RunHandler) enqueueProfile(kind string) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("profile_id"))
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid profile id", nil, err)
		}
		task := tasks.NewTask(kind)
		task.ProfileID = id
		return h.enqueue(c, task)
	}
}

func (h *RunHandler) enqueueConnector(kind string) fiber.Handler {
	return func(c fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("connector_id"))
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid connector id", nil, err)
		}
		task := tasks.NewTask(kind)
		task.ConnectorID = id
		return h.enqueue(c, task)
	}
}

func (h *RunHandler) enqueue(c fiber.Ctx, task tasks.Task) error {
	status := tasks.RunStatus{
		RunID:     task.RunID,
		Kind:      task.Kind,
		State:     tasks.StateQueued,
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.runs.Set(c.Context(), status); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}
	if err := h.queue.Enqueue(c.Context(), task); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, "", nil, err)
	}

	h.logger.Info("run queued",
		zap.String("run_id", task.RunID.String()),
		zap.String("kind", task.Kind),
	)

	return response.Success(c, fiber.StatusAccepted, response.MessageAccepted, dto.RunQueuedResponse{
		RunID: task.RunID,
		Kind:  task.Kind,
		State: tasks.StateQueued,
	})
}

func (h *RunHandler) GetRun(c fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("run_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid run id", nil, err)
	}

	status, err := h.runs.Get(c.Context(), runID)
	if err != nil {
		if errors.Is(err, tasks.ErrRunNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "Run not found", nil, err)
		}
		return err
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.RunStatusResponse{
		RunID:     status.RunID,
		Kind:      status.Kind,
		State:     status.State,
		Done:      status.Done,
		Total:     status.Total,
		Report:    status.Report,
		Error:     status.Error,
		UpdatedAt: status.UpdatedAt,
	})
}
