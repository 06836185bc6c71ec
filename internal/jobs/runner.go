package jobs

import (
  "context"
  "fmt"
  "math"
  "time"

  "github.com/google/uuid"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/types"
)

const (
  defaultJobDelay = 50 * time.Millisecond

  // A processing job whose runner died gets reclaimed after this long.
  staleProcessingAfter = 30 * time.Minute

  // Token pricing for run cost accounting, cents per million tokens.
  costCentsPerMillionTokens = 15
)

// Phases run strictly in order inside one batch: insights must exist before
// embeddings make sense, and both feed the recalculation.
type phase struct {
  jobType string
  limit   int
}

var phases = []phase{
  {types.JobTypeContentAnalysis, 500},
  {types.JobTypeEmbeddingUpdate, 200},
  {types.JobTypeDNARecalculation, 1000},
}

// Runner drains the batch_job table in sequential phases and records one
// batch_run row per invocation. Single-flight by design: overlapping runners
// are safe (claims use SKIP LOCKED) but not faster.
type Runner struct {
  log      *logger.Logger
  jobsRepo repos.BatchJobRepo
  runsRepo repos.BatchRunRepo
  registry *Registry
  jobDelay time.Duration
  now      func() time.Time
  sleep    func(time.Duration)
}

func NewRunner(baseLog *logger.Logger, jobsRepo repos.BatchJobRepo, runsRepo repos.BatchRunRepo, registry *Registry, jobDelay time.Duration) *Runner {
  if jobDelay <= 0 {
    jobDelay = defaultJobDelay
  }
  return &Runner{
    log:      baseLog.With("component", "BatchRunner"),
    jobsRepo: jobsRepo,
    runsRepo: runsRepo,
    registry: registry,
    jobDelay: jobDelay,
    now:      time.Now,
    sleep:    time.Sleep,
  }
}

// Start blocks, kicking off a run every interval until ctx is cancelled. A
// failed run is logged and the loop keeps going; the next tick gets a fresh
// chance.
func (r *Runner) Start(ctx context.Context, interval time.Duration) {
  ticker := time.NewTicker(interval)
  defer ticker.Stop()
  r.log.Info("Batch runner started", "interval", interval.String())
  for {
    select {
    case <-ctx.Done():
      r.log.Info("Batch runner stopped")
      return
    case <-ticker.C:
      if _, err := r.RunOnce(ctx, "scheduled"); err != nil {
        r.log.Error("Batch run failed", "error", err)
      }
    }
  }
}

// RunOnce executes one full batch: claim and process each phase in order,
// then close out the run row with its counters.
func (r *Runner) RunOnce(ctx context.Context, runType string) (*types.BatchRun, error) {
  startedAt := r.now()
  run, err := r.runsRepo.Create(ctx, nil, &types.BatchRun{
    ID:        uuid.New(),
    RunType:   runType,
    Status:    types.RunStatusRunning,
    StartedAt: startedAt,
  })
  if err != nil {
    return nil, fmt.Errorf("create batch run: %w", err)
  }

  var total, completed, failed, tokens int
  runErr := func() error {
    for _, p := range phases {
      jobs, err := r.jobsRepo.ClaimDuePending(ctx, nil, p.jobType, p.limit, r.now(), staleProcessingAfter)
      if err != nil {
        return fmt.Errorf("claim %s jobs: %w", p.jobType, err)
      }
      total += len(jobs)
      for i, job := range jobs {
        jobTokens, ok := r.processJob(ctx, run, job)
        tokens += jobTokens
        if ok {
          completed++
        } else {
          failed++
        }
        if i < len(jobs)-1 {
          r.sleep(r.jobDelay)
        }
      }
    }
    return nil
  }()

  endedAt := r.now()
  status := types.RunStatusCompleted
  if runErr != nil {
    status = types.RunStatusFailed
  }
  updates := map[string]interface{}{
    "status":           status,
    "total_jobs":       total,
    "completed_jobs":   completed,
    "failed_jobs":      failed,
    "tokens_used":      tokens,
    "api_cost_cents":   centsForTokens(tokens),
    "duration_seconds": endedAt.Sub(startedAt).Seconds(),
    "ended_at":         endedAt,
  }
  if err := r.runsRepo.UpdateFields(ctx, nil, run.ID, updates); err != nil {
    r.log.Error("Failed to close batch run", "run_id", run.ID, "error", err)
  }
  if runErr != nil {
    return run, runErr
  }
  r.log.Info("Batch run finished",
    "run_id", run.ID,
    "total", total,
    "completed", completed,
    "failed", failed,
    "tokens", tokens,
  )
  return run, nil
}

// processJob runs one claimed job through its handler. Panics are contained
// to the job: the run keeps going.
func (r *Runner) processJob(ctx context.Context, run *types.BatchRun, job *types.BatchJob) (tokens int, ok bool) {
  handler, found := r.registry.Get(job.JobType)
  if !found {
    return 0, r.settleFailure(ctx, run, job, fmt.Errorf("no handler for job type %q", job.JobType))
  }

  var runErr error
  func() {
    defer func() {
      if rec := recover(); rec != nil {
        runErr = fmt.Errorf("panic: %v", rec)
      }
    }()
    tokens, runErr = handler.Run(NewContext(ctx, job))
  }()

  if runErr != nil {
    return tokens, r.settleFailure(ctx, run, job, runErr)
  }

  now := r.now()
  if err := r.jobsRepo.UpdateFields(ctx, nil, job.ID, map[string]interface{}{
    "status":       types.JobStatusCompleted,
    "completed_at": now,
    "last_error":   "",
  }); err != nil {
    r.log.Error("Failed to mark job completed", "job_id", job.ID, "error", err)
  }
  return tokens, true
}

// settleFailure moves the job to retry or failed per its attempt budget and
// appends the error to the run log. Always returns false (job not ok this
// run, even when it will retry later).
func (r *Runner) settleFailure(ctx context.Context, run *types.BatchRun, job *types.BatchJob, cause error) bool {
  now := r.now()
  status, scheduledFor, attempts := NextAttempt(job.Attempts, job.MaxAttempts, now)

  updates := map[string]interface{}{
    "status":     status,
    "attempts":   attempts,
    "last_error": cause.Error(),
  }
  if status == types.JobStatusRetry {
    updates["scheduled_for"] = scheduledFor
  }
  if err := r.jobsRepo.UpdateFields(ctx, nil, job.ID, updates); err != nil {
    r.log.Error("Failed to record job failure", "job_id", job.ID, "error", err)
  }

  willRetry := status == types.JobStatusRetry
  if err := r.runsRepo.AppendError(ctx, nil, run.ID, types.JobError{
    JobID:     job.ID,
    Error:     cause.Error(),
    Timestamp: now,
    WillRetry: willRetry,
  }); err != nil {
    r.log.Error("Failed to append run error", "run_id", run.ID, "error", err)
  }

  if willRetry {
    r.log.Warn("Job failed, will retry",
      "job_id", job.ID,
      "job_type", job.JobType,
      "attempts", attempts,
      "next_at", scheduledFor,
      "error", cause,
    )
  } else {
    r.log.Error("Job failed permanently",
      "job_id", job.ID,
      "job_type", job.JobType,
      "attempts", attempts,
      "error", cause,
    )
  }
  return false
}

func centsForTokens(tokens int) int {
  if tokens <= 0 {
    return 0
  }
  return int(math.Round(float64(tokens) * costCentsPerMillionTokens / 1_000_000))
}
