package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/services"
  "github.com/yungbote/souldna-backend/internal/types"
)

type DNAHandler struct {
  scores services.DNAScoreService
  jobs   repos.BatchJobRepo
}

func NewDNAHandler(scores services.DNAScoreService, jobs repos.BatchJobRepo) *DNAHandler {
  return &DNAHandler{scores: scores, jobs: jobs}
}

// GET /internal/users/:id/dna
func (h *DNAHandler) GetDNA(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
    return
  }
  score, err := h.scores.GetByUserID(c.Request.Context(), userID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "dna_lookup_failed", err)
    return
  }
  if score == nil {
    RespondError(c, http.StatusNotFound, "dna_not_found", fmt.Errorf("no score for user %s", userID))
    return
  }
  RespondOK(c, gin.H{"dna_score": score})
}

// POST /internal/users/:id/dna/recalculate
//
// Enqueues rather than computing inline: the recalculation goes through the
// same batch machinery (attempts, backoff, run accounting) as scheduled work.
func (h *DNAHandler) Recalculate(c *gin.Context) {
  userID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
    return
  }
  job := &types.BatchJob{
    ID:      uuid.New(),
    JobType: types.JobTypeDNARecalculation,
    Payload: datatypes.JSON([]byte(fmt.Sprintf(`{"user_id":%q}`, userID))),
    Status:  types.JobStatusPending,
  }
  if _, err := h.jobs.Create(c.Request.Context(), nil, []*types.BatchJob{job}); err != nil {
    RespondError(c, http.StatusInternalServerError, "enqueue_failed", err)
    return
  }
  c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}
