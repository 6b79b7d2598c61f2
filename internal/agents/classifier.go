package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/SmartChain-HD/AI/internal/matcher"
	"github.com/SmartChain-HD/AI/internal/prompts"
)

// Classifier returns the fallback slot classifier for domain.
func (c *Client) Classifier(domain string) matcher.Classifier {
	return &classifier{client: c, domain: domain}
}

type classifier struct {
	client *Client
	domain string
}

func (k *classifier) ClassifySlot(ctx context.Context, filename string, slots []string) (matcher.Classification, error) {
	input := fmt.Sprintf("File name: %s\n\nLegal slot names:\n- %s", filename, strings.Join(slots, "\n- "))

	return ask[matcher.Classification](ctx, k.client, call{
		stage:  prompts.StageSlot,
		domain: k.domain,
		input:  input,
	})
}
