package handlers

import (
  "fmt"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/yungbote/souldna-backend/internal/repos"
  "github.com/yungbote/souldna-backend/internal/types"
)

type PostHandler struct {
  posts repos.PostRepo
  jobs  repos.BatchJobRepo
}

func NewPostHandler(posts repos.PostRepo, jobs repos.BatchJobRepo) *PostHandler {
  return &PostHandler{posts: posts, jobs: jobs}
}

// POST /internal/posts/:id/analyze
func (h *PostHandler) Analyze(c *gin.Context) {
  postID, err := uuid.Parse(c.Param("id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_post_id", err)
    return
  }
  post, err := h.posts.GetByID(c.Request.Context(), nil, postID)
  if err != nil {
    RespondError(c, http.StatusInternalServerError, "post_lookup_failed", err)
    return
  }
  if post == nil {
    RespondError(c, http.StatusNotFound, "post_not_found", fmt.Errorf("post %s not found", postID))
    return
  }
  job := &types.BatchJob{
    ID:      uuid.New(),
    JobType: types.JobTypeContentAnalysis,
    Payload: datatypes.JSON([]byte(fmt.Sprintf(`{"post_id":%q}`, postID))),
    Status:  types.JobStatusPending,
  }
  if _, err := h.jobs.Create(c.Request.Context(), nil, []*types.BatchJob{job}); err != nil {
    RespondError(c, http.StatusInternalServerError, "enqueue_failed", err)
    return
  }
  c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
}
