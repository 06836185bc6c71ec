package jobs

import (
  "context"
  "encoding/json"
  "fmt"

  "github.com/google/uuid"

  "github.com/yungbote/souldna-backend/internal/types"
)

// Context wraps a claimed job and its decoded payload for handlers. A
// malformed payload decodes to an empty map rather than aborting the claim;
// the handler's field accessors surface the real error so it goes through
// the normal retry path.
type Context struct {
  Ctx     context.Context
  Job     *types.BatchJob
  payload map[string]interface{}
}

func NewContext(ctx context.Context, job *types.BatchJob) *Context {
  payload := map[string]interface{}{}
  if job != nil && len(job.Payload) > 0 {
    if err := json.Unmarshal(job.Payload, &payload); err != nil {
      payload = map[string]interface{}{}
    }
  }
  return &Context{Ctx: ctx, Job: job, payload: payload}
}

func (c *Context) UserID() (uuid.UUID, error) {
  return c.uuidField("user_id")
}

func (c *Context) PostID() (uuid.UUID, error) {
  return c.uuidField("post_id")
}

func (c *Context) uuidField(key string) (uuid.UUID, error) {
  raw, ok := c.payload[key]
  if !ok {
    return uuid.Nil, fmt.Errorf("payload missing %s", key)
  }
  str, ok := raw.(string)
  if !ok {
    return uuid.Nil, fmt.Errorf("payload %s is not a string", key)
  }
  id, err := uuid.Parse(str)
  if err != nil {
    return uuid.Nil, fmt.Errorf("payload %s: %w", key, err)
  }
  return id, nil
}
