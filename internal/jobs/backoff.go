package jobs

import (
  "time"

  "github.com/yungbote/souldna-backend/internal/types"
)

const backoffBase = 5 * time.Minute

// NextAttempt decides what happens to a job after a failed run: bump the
// attempt counter, then either schedule a retry with exponential backoff
// (5m * 2^attempts) or fail it for good once MaxAttempts is spent.
func NextAttempt(attempts, maxAttempts int, now time.Time) (status string, scheduledFor time.Time, newAttempts int) {
  newAttempts = attempts + 1
  if newAttempts >= maxAttempts {
    return types.JobStatusFailed, time.Time{}, newAttempts
  }
  delay := backoffBase * time.Duration(1<<uint(newAttempts))
  return types.JobStatusRetry, now.Add(delay), newAttempts
}
