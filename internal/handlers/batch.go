package handlers

import (
  "context"
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/types"
)

const defaultRunHistoryLimit = 20

// BatchRunner is what the trigger endpoint needs from the runner.
type BatchRunner interface {
  RunOnce(ctx context.Context, runType string) (*types.BatchRun, error)
}

type BatchHandler struct {
  runner BatchRunner
  runs   repos.BatchRunRepo
}

func NewBatchHandler(runner BatchRunner, runs repos.BatchRunRepo) *BatchHandler {
  return &BatchHandler{runner: runner, runs: runs}
}

// POST /internal/batch/runs
//
// Runs the batch synchronously. This is an internal operator endpoint; the
// caller wants the closed run row with its counters back.
func (h *BatchHandler) TriggerRun(c *gin.Context) {
  run, err := h.runner.RunOnce(c.Request.Context(), "manual")
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "batch_run_failed", err)
    return
  }
  RespondOK(c, gin.H{"run": run})
}

// GET /internal/batch/runs
func (h *BatchHandler) ListRuns(c *gin.Context) {
  limit := defaultRunHistoryLimit
  if raw := c.Query("limit"); raw != "" {
    parsed, err := strconv.Atoi(raw)
    if err != nil || parsed <= 0 {
      RespondError(c, http.StatusBadRequest, "invalid_limit", err)
      return
    }
    limit = parsed
  }
  runs, err := h.runs.GetRecent(c.Request.Context(), nil, limit)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "run_history_failed", err)
    return
  }
  RespondOK(c, gin.H{"runs": runs})
}
