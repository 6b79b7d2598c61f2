// Package agents adapts a language model into the pipeline's model
// collaborators: the fallback slot classifier, the per-file enricher, the
// text recognizer, and the final judge. Every call composes its prompt
// from the prompts package and parses a JSON answer.
package agents

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/JaimeStill/go-agents/pkg/agent"

	"github.com/SmartChain-HD/AI/internal/prompts"
	"github.com/SmartChain-HD/AI/pkg/formatting"
)

// Model sends a prompt to a language model and returns the text of its
// reply. Vision attaches images given as data URIs.
type Model interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Vision(ctx context.Context, prompt string, images []string) (string, error)
}

type agentModel struct {
	cfg gaconfig.AgentConfig
}

// NewModel creates a Model backed by go-agents. A fresh agent is created
// per call so concurrent callers share no state.
func NewModel(cfg gaconfig.AgentConfig) Model {
	return &agentModel{cfg: cfg}
}

func (m *agentModel) Chat(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&m.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}
	return resp.Content(), nil
}

func (m *agentModel) Vision(ctx context.Context, prompt string, images []string) (string, error) {
	a, err := agent.New(&m.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Vision(ctx, prompt, images)
	if err != nil {
		return "", fmt.Errorf("vision call: %w", err)
	}
	return resp.Content(), nil
}

// Client issues the pipeline's model calls.
type Client struct {
	model   Model
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a Client over model. limiter may be nil.
func New(model Model, limiter *rate.Limiter, logger *slog.Logger) *Client {
	return &Client{
		model:   model,
		limiter: limiter,
		logger:  logger.With("system", "agents"),
	}
}

type call struct {
	stage  prompts.Stage
	domain string
	input  string
	images []string
	// throttled calls already waited on the shared limiter upstream.
	throttled bool
}

func (c *Client) send(ctx context.Context, req call) (string, error) {
	prompt, err := prompts.Compose(req.stage, req.domain, req.input)
	if err != nil {
		return "", err
	}

	if c.limiter != nil && !req.throttled {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	if len(req.images) > 0 {
		return c.model.Vision(ctx, prompt, req.images)
	}
	return c.model.Chat(ctx, prompt)
}

func ask[T any](ctx context.Context, c *Client, req call) (T, error) {
	var zero T

	content, err := c.send(ctx, req)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", req.stage, err)
	}

	parsed, err := formatting.Parse[T](content)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", req.stage, err)
	}

	c.logger.DebugContext(ctx, "model call complete", "stage", req.stage, "domain", req.domain)
	return parsed, nil
}
