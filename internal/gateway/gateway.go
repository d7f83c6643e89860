// Package gateway wraps the hosted language model behind typed operations.
// Every operation degrades to a deterministic fallback when the upstream
// call or its JSON payload cannot be used, so interview flows never stall
// on a flaky model.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrMisconfigured = errors.New("gateway: api key not configured")
	ErrRateLimited   = errors.New("gateway: rate limited by upstream")
	ErrAuth          = errors.New("gateway: upstream rejected credentials")
)

// Turn is one utterance of the interview transcript as seen by the model.
type Turn struct {
	Role    string
	Content string
}

type Message struct {
	Role    string
	Content string
}

// ChatRequest is the neutral completion request the Completer executes.
type ChatRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Completer is the single seam to the model provider. Tests substitute a
// scripted implementation.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

type Gateway struct {
	completer Completer
	log       *zap.Logger
	timeout   time.Duration
}

func New(completer Completer, log *zap.Logger, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{completer: completer, log: log, timeout: timeout}
}

// complete runs one chat call under the gateway's timeout.
func (g *Gateway) complete(ctx context.Context, req ChatRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.completer.Complete(ctx, req)
}

// completeJSON runs one call and decodes the reply into out after stripping
// any markdown fence. Returns false when the call failed or the payload did
// not decode; out is untouched in that case.
func (g *Gateway) completeJSON(ctx context.Context, op string, req ChatRequest, out any) bool {
	raw, err := g.complete(ctx, req)
	if err != nil {
		g.log.Warn("model call failed, using fallback", zap.String("op", op), zap.Error(err))
		return false
	}
	if err := json.Unmarshal([]byte(StripFences(raw)), out); err != nil {
		g.log.Warn("model returned undecodable payload, using fallback",
			zap.String("op", op), zap.Error(err))
		return false
	}
	return true
}

// StripFences removes a surrounding markdown code fence (``` or ```json)
// from a model reply, leaving the inner payload.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		return trimmed
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

func transcriptBlock(turns []Turn, last int) string {
	if last > 0 && len(turns) > last {
		turns = turns[len(turns)-last:]
	}
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(t.Role)
		b.WriteString(": ")
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func clampScore(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
