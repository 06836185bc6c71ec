package openai

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "os"
  "strconv"
  "strings"
  "time"

  "github.com/yungbote/souldna-backend/internal/logger"
)

// EmbeddingDim is the fixed dimension of the embedding model output.
const EmbeddingDim = 1536

// InsightCandidate is one structured claim returned by the classification
// call, before moderation.
type InsightCandidate struct {
  Category    string  `json:"category"`
  Title       string  `json:"title"`
  Description string  `json:"description"`
  Confidence  float64 `json:"confidence"`
}

// Client is the boundary to the embedding/classification provider. Both
// calls report the tokens they spent so batch runs can account for cost.
type Client interface {
  Embed(ctx context.Context, inputs []string) ([][]float32, int, error)
  ExtractInsights(ctx context.Context, caption string, categories []string) ([]InsightCandidate, int, error)
}

type client struct {
  log        *logger.Logger
  httpClient *http.Client
  apiKey     string
  baseURL    string
  model      string
  embedModel string
  maxRetries int
}

func New(log *logger.Logger) (Client, error) {
  apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
  if apiKey == "" {
    return nil, fmt.Errorf("missing OPENAI_API_KEY")
  }

  baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
  if baseURL == "" {
    baseURL = "https://api.openai.com"
  }
  baseURL = strings.TrimRight(baseURL, "/")

  model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
  if model == "" {
    model = "gpt-4o-mini"
  }

  embed := strings.TrimSpace(os.Getenv("OPENAI_EMBED_MODEL"))
  if embed == "" {
    embed = "text-embedding-3-small"
  }

  timeoutSec := 120
  if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
      timeoutSec = parsed
    }
  }

  maxRetries := 3
  if v := os.Getenv("OPENAI_MAX_RETRIES"); v != "" {
    if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
      maxRetries = parsed
    }
  }

  return &client{
    log:        log.With("client", "OpenAI"),
    httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
    apiKey:     apiKey,
    baseURL:    baseURL,
    model:      model,
    embedModel: embed,
    maxRetries: maxRetries,
  }, nil
}

func (c *client) do(ctx context.Context, method, path string, reqBody, out interface{}) error {
  raw, err := json.Marshal(reqBody)
  if err != nil {
    return fmt.Errorf("marshal request: %w", err)
  }

  var lastErr error
  for attempt := 0; attempt <= c.maxRetries; attempt++ {
    if attempt > 0 {
      backoff := time.Duration(attempt) * 2 * time.Second
      select {
      case <-ctx.Done():
        return ctx.Err()
      case <-time.After(backoff):
      }
    }

    req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
    if err != nil {
      return err
    }
    req.Header.Set("Authorization", "Bearer "+c.apiKey)
    req.Header.Set("Content-Type", "application/json")

    resp, err := c.httpClient.Do(req)
    if err != nil {
      lastErr = err
      continue
    }
    body, readErr := io.ReadAll(resp.Body)
    resp.Body.Close()
    if readErr != nil {
      lastErr = readErr
      continue
    }
    if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
      lastErr = fmt.Errorf("openai %s: status %d: %s", path, resp.StatusCode, truncate(string(body), 200))
      c.log.Warn("Retryable OpenAI error", "path", path, "status", resp.StatusCode, "attempt", attempt)
      continue
    }
    if resp.StatusCode != http.StatusOK {
      return fmt.Errorf("openai %s: status %d: %s", path, resp.StatusCode, truncate(string(body), 200))
    }
    if err := json.Unmarshal(body, out); err != nil {
      return fmt.Errorf("openai %s: decode response: %w", path, err)
    }
    return nil
  }
  return lastErr
}

// -------------------- Embeddings --------------------

type embeddingsRequest struct {
  Model string   `json:"model"`
  Input []string `json:"input"`
}

type embeddingsResponse struct {
  Data []struct {
    Embedding []float64 `json:"embedding"`
    Index     int       `json:"index"`
  } `json:"data"`
  Usage struct {
    TotalTokens int `json:"total_tokens"`
  } `json:"usage"`
}

func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, int, error) {
  if len(inputs) == 0 {
    return [][]float32{}, 0, nil
  }

  clean := make([]string, len(inputs))
  for i := range inputs {
    s := strings.TrimSpace(inputs[i])
    if s == "" {
      s = " "
    }
    clean[i] = s
  }

  req := embeddingsRequest{Model: c.embedModel, Input: clean}
  var resp embeddingsResponse
  if err := c.do(ctx, "POST", "/v1/embeddings", req, &resp); err != nil {
    return nil, 0, err
  }

  out := make([][]float32, len(clean))
  for _, d := range resp.Data {
    vec := make([]float32, len(d.Embedding))
    for i, f := range d.Embedding {
      vec[i] = float32(f)
    }
    if d.Index >= 0 && d.Index < len(out) {
      out[d.Index] = vec
    }
  }
  for i := range out {
    if out[i] == nil {
      return nil, 0, fmt.Errorf("openai embeddings missing index %d: requested=%d returned=%d model=%s", i, len(clean), len(resp.Data), c.embedModel)
    }
  }
  return out, resp.Usage.TotalTokens, nil
}

// -------------------- Insight extraction --------------------

const insightSystemPrompt = `You analyze a dating-app post caption and extract personality insights about its author. Respond with a JSON object {"insights": [{"category": string, "title": string, "description": string, "confidence": number 0-1}]}. Categories: personality, values, lifestyle, interests, communication. Extract at most 5 insights; skip anything not clearly supported by the text.`

type chatRequest struct {
  Model          string        `json:"model"`
  Messages       []chatMessage `json:"messages"`
  ResponseFormat *format       `json:"response_format,omitempty"`
}

type chatMessage struct {
  Role    string `json:"role"`
  Content string `json:"content"`
}

type format struct {
  Type string `json:"type"`
}

type chatResponse struct {
  Choices []struct {
    Message struct {
      Content string `json:"content"`
    } `json:"message"`
  } `json:"choices"`
  Usage struct {
    TotalTokens int `json:"total_tokens"`
  } `json:"usage"`
}

// ExtractInsights classifies one caption. A malformed model payload is not
// an error at this boundary: it yields an empty insight list so the caller's
// job does not crash on model misbehavior.
func (c *client) ExtractInsights(ctx context.Context, caption string, categories []string) ([]InsightCandidate, int, error) {
  userMsg := caption
  if len(categories) > 0 {
    userMsg = fmt.Sprintf("Caption: %s\nDeclared categories: %s", caption, strings.Join(categories, ", "))
  }
  req := chatRequest{
    Model: c.model,
    Messages: []chatMessage{
      {Role: "system", Content: insightSystemPrompt},
      {Role: "user", Content: userMsg},
    },
    ResponseFormat: &format{Type: "json_object"},
  }
  var resp chatResponse
  if err := c.do(ctx, "POST", "/v1/chat/completions", req, &resp); err != nil {
    return nil, 0, err
  }
  if len(resp.Choices) == 0 {
    c.log.Warn("Classification returned no choices, substituting empty insight list")
    return []InsightCandidate{}, resp.Usage.TotalTokens, nil
  }
  insights, ok := ParseInsightPayload(resp.Choices[0].Message.Content)
  if !ok {
    c.log.Warn("Classification returned malformed JSON, substituting empty insight list")
  }
  return insights, resp.Usage.TotalTokens, nil
}

// ParseInsightPayload decodes the model's JSON payload. The second return is
// false when the payload was malformed; the insight list is always usable.
func ParseInsightPayload(content string) ([]InsightCandidate, bool) {
  var payload struct {
    Insights []InsightCandidate `json:"insights"`
  }
  if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &payload); err != nil {
    return []InsightCandidate{}, false
  }
  out := make([]InsightCandidate, 0, len(payload.Insights))
  for _, ins := range payload.Insights {
    if strings.TrimSpace(ins.Title) == "" {
      continue
    }
    if ins.Confidence < 0 {
      ins.Confidence = 0
    }
    if ins.Confidence > 1 {
      ins.Confidence = 1
    }
    out = append(out, ins)
  }
  return out, true
}

func truncate(s string, n int) string {
  if len(s) <= n {
    return s
  }
  return s[:n] + "..."
}
