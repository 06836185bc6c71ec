package jobs

import (
  "fmt"
)

// Handler executes one claimed job. Returned tokens are the model tokens the
// job spent, accumulated onto the batch run for cost accounting.
type Handler interface {
  Type() string
  Run(jc *Context) (int, error)
}

type Registry struct {
  handlers map[string]Handler
}

func NewRegistry() *Registry {
  return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(h Handler) error {
  if h == nil || h.Type() == "" {
    return fmt.Errorf("handler missing type")
  }
  if _, exists := r.handlers[h.Type()]; exists {
    return fmt.Errorf("handler for %q already registered", h.Type())
  }
  r.handlers[h.Type()] = h
  return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
  h, ok := r.handlers[jobType]
  return h, ok
}
