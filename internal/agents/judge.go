package agents

import (
	"context"
	"fmt"

	"github.com/SmartChain-HD/AI/internal/aggregate"
	"github.com/SmartChain-HD/AI/internal/prompts"
)

type judgeResponse struct {
	Comment string `json:"comment"`
}

// Judge asks the model for an overall comment on a finished report. The
// comment is advisory; the report's verdicts are never changed by it.
func (c *Client) Judge(ctx context.Context, domain string, report *aggregate.Report) (string, error) {
	input := fmt.Sprintf(
		"Overall verdict: %s (risk %s)\n\nSlot results:\n%s",
		report.Verdict, report.RiskLevel, aggregate.Digest(report.SlotResults),
	)

	resp, err := ask[judgeResponse](ctx, c, call{
		stage:  prompts.StageJudge,
		domain: domain,
		input:  input,
	})
	if err != nil {
		return "", err
	}
	return resp.Comment, nil
}
