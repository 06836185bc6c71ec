package jobs

import (
  "testing"
  "time"

  "github.com/yungbote/souldna-backend/internal/types"
)

func TestNextAttemptSchedulesExponentialBackoff(t *testing.T) {
  now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

  cases := []struct {
    attempts  int
    wantDelay time.Duration
  }{
    {0, 10 * time.Minute},
    {1, 20 * time.Minute},
  }
  for _, tc := range cases {
    status, scheduledFor, newAttempts := NextAttempt(tc.attempts, 3, now)
    if status != types.JobStatusRetry {
      t.Errorf("attempts %d: status = %s, want retry", tc.attempts, status)
    }
    if newAttempts != tc.attempts+1 {
      t.Errorf("attempts %d: newAttempts = %d, want %d", tc.attempts, newAttempts, tc.attempts+1)
    }
    if got := scheduledFor.Sub(now); got != tc.wantDelay {
      t.Errorf("attempts %d: delay = %v, want %v", tc.attempts, got, tc.wantDelay)
    }
  }
}

func TestNextAttemptFailsAfterBudgetSpent(t *testing.T) {
  now := time.Now()
  status, scheduledFor, newAttempts := NextAttempt(2, 3, now)
  if status != types.JobStatusFailed {
    t.Errorf("status = %s, want failed", status)
  }
  if newAttempts != 3 {
    t.Errorf("newAttempts = %d, want 3", newAttempts)
  }
  if !scheduledFor.IsZero() {
    t.Errorf("failed job should not be rescheduled, got %v", scheduledFor)
  }
}
