package jobs

import (
  "context"
  "errors"
  "testing"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/yungbote/souldna-backend/internal/logger"
  "github.com/yungbote/souldna-backend/internal/types"
)

func testLogger() *logger.Logger {
  log, err := logger.New("test")
  if err != nil {
    panic(err)
  }
  return log
}

type stubHandler struct {
  jobType string
  tokens  int
  err     error
  panics  bool
  runs    int
}

func (h *stubHandler) Type() string {
  return h.jobType
}

func (h *stubHandler) Run(jc *Context) (int, error) {
  h.runs++
  if h.panics {
    panic("boom")
  }
  return h.tokens, h.err
}

type claimCall struct {
  jobType string
  limit   int
}

type stubJobRepo struct {
  queues  map[string][]*types.BatchJob
  claims  []claimCall
  updates map[uuid.UUID]map[string]interface{}
  claimErr error
}

func (s *stubJobRepo) Create(ctx context.Context, tx *gorm.DB, jobs []*types.BatchJob) ([]*types.BatchJob, error) {
  return jobs, nil
}

func (s *stubJobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BatchJob, error) {
  return nil, nil
}

func (s *stubJobRepo) ClaimDuePending(ctx context.Context, tx *gorm.DB, jobType string, limit int, now time.Time, staleProcessingAfter time.Duration) ([]*types.BatchJob, error) {
  s.claims = append(s.claims, claimCall{jobType: jobType, limit: limit})
  if s.claimErr != nil {
    return nil, s.claimErr
  }
  return s.queues[jobType], nil
}

func (s *stubJobRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  if s.updates == nil {
    s.updates = map[uuid.UUID]map[string]interface{}{}
  }
  s.updates[id] = updates
  return nil
}

type stubRunRepo struct {
  created *types.BatchRun
  updates map[string]interface{}
  appended []types.JobError
}

func (s *stubRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.BatchRun) (*types.BatchRun, error) {
  s.created = run
  return run, nil
}

func (s *stubRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
  s.updates = updates
  return nil
}

func (s *stubRunRepo) AppendError(ctx context.Context, tx *gorm.DB, id uuid.UUID, entry types.JobError) error {
  s.appended = append(s.appended, entry)
  return nil
}

func (s *stubRunRepo) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.BatchRun, error) {
  return nil, nil
}

func newTestRunner(jobsRepo *stubJobRepo, runsRepo *stubRunRepo, handlers ...Handler) *Runner {
  registry := NewRegistry()
  for _, h := range handlers {
    if err := registry.Register(h); err != nil {
      panic(err)
    }
  }
  return &Runner{
    log:      testLogger(),
    jobsRepo: jobsRepo,
    runsRepo: runsRepo,
    registry: registry,
    jobDelay: time.Millisecond,
    now:      time.Now,
    sleep:    func(time.Duration) {},
  }
}

func pendingJob(jobType string) *types.BatchJob {
  return &types.BatchJob{
    ID:          uuid.New(),
    JobType:     jobType,
    Status:      types.JobStatusProcessing,
    MaxAttempts: 3,
  }
}

func TestRunOncePhaseOrderAndLimits(t *testing.T) {
  jobsRepo := &stubJobRepo{}
  runner := newTestRunner(jobsRepo, &stubRunRepo{})

  if _, err := runner.RunOnce(context.Background(), "scheduled"); err != nil {
    t.Fatalf("RunOnce: %v", err)
  }

  want := []claimCall{
    {types.JobTypeContentAnalysis, 500},
    {types.JobTypeEmbeddingUpdate, 200},
    {types.JobTypeDNARecalculation, 1000},
  }
  if len(jobsRepo.claims) != len(want) {
    t.Fatalf("claims = %v, want %v", jobsRepo.claims, want)
  }
  for i := range want {
    if jobsRepo.claims[i] != want[i] {
      t.Errorf("claim %d = %v, want %v", i, jobsRepo.claims[i], want[i])
    }
  }
}

func TestRunOnceCompletesJobsAndAccountsTokens(t *testing.T) {
  job1 := pendingJob(types.JobTypeContentAnalysis)
  job2 := pendingJob(types.JobTypeContentAnalysis)
  jobsRepo := &stubJobRepo{queues: map[string][]*types.BatchJob{
    types.JobTypeContentAnalysis: {job1, job2},
  }}
  runsRepo := &stubRunRepo{}
  handler := &stubHandler{jobType: types.JobTypeContentAnalysis, tokens: 150}
  runner := newTestRunner(jobsRepo, runsRepo, handler)

  run, err := runner.RunOnce(context.Background(), "manual")
  if err != nil {
    t.Fatalf("RunOnce: %v", err)
  }
  if run.RunType != "manual" {
    t.Errorf("RunType = %s, want manual", run.RunType)
  }
  if handler.runs != 2 {
    t.Errorf("handler ran %d times, want 2", handler.runs)
  }
  for _, job := range []*types.BatchJob{job1, job2} {
    updates := jobsRepo.updates[job.ID]
    if updates["status"] != types.JobStatusCompleted {
      t.Errorf("job %s status = %v, want completed", job.ID, updates["status"])
    }
  }
  if runsRepo.updates["status"] != types.RunStatusCompleted {
    t.Errorf("run status = %v, want completed", runsRepo.updates["status"])
  }
  if runsRepo.updates["total_jobs"] != 2 || runsRepo.updates["completed_jobs"] != 2 || runsRepo.updates["failed_jobs"] != 0 {
    t.Errorf("run counters = %v/%v/%v, want 2/2/0",
      runsRepo.updates["total_jobs"], runsRepo.updates["completed_jobs"], runsRepo.updates["failed_jobs"])
  }
  if runsRepo.updates["tokens_used"] != 300 {
    t.Errorf("tokens_used = %v, want 300", runsRepo.updates["tokens_used"])
  }
}

func TestRunOnceRetriesFailedJobWithBackoff(t *testing.T) {
  job := pendingJob(types.JobTypeDNARecalculation)
  jobsRepo := &stubJobRepo{queues: map[string][]*types.BatchJob{
    types.JobTypeDNARecalculation: {job},
  }}
  runsRepo := &stubRunRepo{}
  handler := &stubHandler{jobType: types.JobTypeDNARecalculation, err: errors.New("profile not found")}
  runner := newTestRunner(jobsRepo, runsRepo, handler)

  before := time.Now()
  if _, err := runner.RunOnce(context.Background(), "scheduled"); err != nil {
    t.Fatalf("RunOnce: %v", err)
  }

  updates := jobsRepo.updates[job.ID]
  if updates["status"] != types.JobStatusRetry {
    t.Fatalf("status = %v, want retry", updates["status"])
  }
  if updates["attempts"] != 1 {
    t.Errorf("attempts = %v, want 1", updates["attempts"])
  }
  scheduledFor, ok := updates["scheduled_for"].(time.Time)
  if !ok {
    t.Fatalf("scheduled_for missing from updates %v", updates)
  }
  if delay := scheduledFor.Sub(before); delay < 9*time.Minute || delay > 11*time.Minute {
    t.Errorf("retry delay = %v, want ~10m for first failure", delay)
  }

  if len(runsRepo.appended) != 1 {
    t.Fatalf("appended errors = %d, want 1", len(runsRepo.appended))
  }
  entry := runsRepo.appended[0]
  if entry.JobID != job.ID || !entry.WillRetry {
    t.Errorf("error entry = %+v, want job id with WillRetry", entry)
  }
  if runsRepo.updates["failed_jobs"] != 1 {
    t.Errorf("failed_jobs = %v, want 1", runsRepo.updates["failed_jobs"])
  }
}

func TestRunOnceFailsJobAfterLastAttempt(t *testing.T) {
  job := pendingJob(types.JobTypeContentAnalysis)
  job.Attempts = 2
  jobsRepo := &stubJobRepo{queues: map[string][]*types.BatchJob{
    types.JobTypeContentAnalysis: {job},
  }}
  runsRepo := &stubRunRepo{}
  handler := &stubHandler{jobType: types.JobTypeContentAnalysis, err: errors.New("still broken")}
  runner := newTestRunner(jobsRepo, runsRepo, handler)

  if _, err := runner.RunOnce(context.Background(), "scheduled"); err != nil {
    t.Fatalf("RunOnce: %v", err)
  }

  updates := jobsRepo.updates[job.ID]
  if updates["status"] != types.JobStatusFailed {
    t.Errorf("status = %v, want failed on third attempt", updates["status"])
  }
  if updates["attempts"] != 3 {
    t.Errorf("attempts = %v, want 3", updates["attempts"])
  }
  if _, ok := updates["scheduled_for"]; ok {
    t.Errorf("failed job should not be rescheduled")
  }
  if len(runsRepo.appended) != 1 || runsRepo.appended[0].WillRetry {
    t.Errorf("error entry = %+v, want WillRetry=false", runsRepo.appended)
  }
}

func TestRunOnceContainsHandlerPanic(t *testing.T) {
  panicky := pendingJob(types.JobTypeContentAnalysis)
  healthy := pendingJob(types.JobTypeDNARecalculation)
  jobsRepo := &stubJobRepo{queues: map[string][]*types.BatchJob{
    types.JobTypeContentAnalysis:  {panicky},
    types.JobTypeDNARecalculation: {healthy},
  }}
  runsRepo := &stubRunRepo{}
  runner := newTestRunner(jobsRepo, runsRepo,
    &stubHandler{jobType: types.JobTypeContentAnalysis, panics: true},
    &stubHandler{jobType: types.JobTypeDNARecalculation},
  )

  if _, err := runner.RunOnce(context.Background(), "scheduled"); err != nil {
    t.Fatalf("RunOnce: %v", err)
  }

  if jobsRepo.updates[panicky.ID]["status"] != types.JobStatusRetry {
    t.Errorf("panicked job status = %v, want retry", jobsRepo.updates[panicky.ID]["status"])
  }
  if jobsRepo.updates[healthy.ID]["status"] != types.JobStatusCompleted {
    t.Errorf("later phase job status = %v, want completed despite earlier panic", jobsRepo.updates[healthy.ID]["status"])
  }
  if runsRepo.updates["status"] != types.RunStatusCompleted {
    t.Errorf("run status = %v, want completed (panic is a job failure, not a run failure)", runsRepo.updates["status"])
  }
}

func TestRunOnceClaimErrorFailsRun(t *testing.T) {
  jobsRepo := &stubJobRepo{claimErr: errors.New("db down")}
  runsRepo := &stubRunRepo{}
  runner := newTestRunner(jobsRepo, runsRepo)

  if _, err := runner.RunOnce(context.Background(), "scheduled"); err == nil {
    t.Fatalf("RunOnce succeeded, want claim error")
  }
  if runsRepo.updates["status"] != types.RunStatusFailed {
    t.Errorf("run status = %v, want failed", runsRepo.updates["status"])
  }
}

func TestCentsForTokens(t *testing.T) {
  cases := []struct {
    tokens int
    want   int
  }{
    {0, 0},
    {1_000_000, 15},
    {2_000_000, 30},
    {100_000, 2},
  }
  for _, tc := range cases {
    if got := centsForTokens(tc.tokens); got != tc.want {
      t.Errorf("centsForTokens(%d) = %d, want %d", tc.tokens, got, tc.want)
    }
  }
}
