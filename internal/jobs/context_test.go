package jobs

import (
  "context"
  "fmt"
  "testing"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/yungbote/souldna-backend/internal/types"
)

func TestContextPayloadFields(t *testing.T) {
  userID := uuid.New()
  postID := uuid.New()
  job := &types.BatchJob{
    ID:      uuid.New(),
    Payload: datatypes.JSON([]byte(fmt.Sprintf(`{"user_id":%q,"post_id":%q}`, userID, postID))),
  }
  jc := NewContext(context.Background(), job)

  gotUser, err := jc.UserID()
  if err != nil || gotUser != userID {
    t.Errorf("UserID = %s, %v; want %s, nil", gotUser, err, userID)
  }
  gotPost, err := jc.PostID()
  if err != nil || gotPost != postID {
    t.Errorf("PostID = %s, %v; want %s, nil", gotPost, err, postID)
  }
}

func TestContextMalformedPayload(t *testing.T) {
  cases := []struct {
    name    string
    payload string
  }{
    {"not json", `{{{`},
    {"missing field", `{}`},
    {"wrong type", `{"user_id": 42}`},
    {"not a uuid", `{"user_id": "nope"}`},
  }
  for _, tc := range cases {
    job := &types.BatchJob{ID: uuid.New(), Payload: datatypes.JSON([]byte(tc.payload))}
    jc := NewContext(context.Background(), job)
    if _, err := jc.UserID(); err == nil {
      t.Errorf("%s: UserID() succeeded, want error", tc.name)
    }
  }
}

func TestRegistryRejectsDuplicates(t *testing.T) {
  reg := NewRegistry()
  h := &stubHandler{jobType: types.JobTypeContentAnalysis}
  if err := reg.Register(h); err != nil {
    t.Fatalf("Register: %v", err)
  }
  if err := reg.Register(h); err == nil {
    t.Errorf("duplicate Register succeeded, want error")
  }
  if _, ok := reg.Get(types.JobTypeContentAnalysis); !ok {
    t.Errorf("Get after Register returned not found")
  }
  if _, ok := reg.Get("unknown"); ok {
    t.Errorf("Get(unknown) found a handler")
  }
}
