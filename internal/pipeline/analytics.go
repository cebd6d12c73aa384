package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
)

// Ask poses a free-form question over an already-extracted record set. The
// records serialize verbatim into the prompt and the model answer comes back
// untouched. On failure the returned string is a human-readable fallback so
// callers showing the answer directly never show an empty screen.
func (p *Processor) Ask(ctx context.Context, question string, txs []Transaction) (string, error) {
	recordsJSON, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return "Sorry, the transaction data could not be serialized.", fmt.Errorf("marshal records: %w", err)
	}

	prompt := BuildAnalyticsPrompt(string(recordsJSON), question)

	answer, err := p.client.Invoke(ctx, prompt)
	if err != nil {
		return "Sorry, no answer is available right now.", err
	}
	return answer, nil
}
