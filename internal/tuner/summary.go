package tuner

import (
	"context"
	"fmt"
	"strings"
)

// updateSummary merges the session's accumulated feedback into the
// per-type preference summary and overwrites the stored row. The merge is
// model-generated, so it is best-effort enrichment, not a pure function.
// Sessions without feedback leave the summary untouched.
func (l *Loop) updateSummary(ctx context.Context, ptype string, session int64) error {
	feedbacks, err := l.History.SessionFeedback(session)
	if err != nil {
		return fmt.Errorf("collecting session feedback: %w", err)
	}
	if len(feedbacks) == 0 {
		return nil
	}

	prev, err := l.History.Summary(ptype)
	if err != nil {
		return err
	}

	merged, err := l.Gateway.Generate(ctx, l.Model, mergePrompt(ptype, prev, feedbacks), l.Options)
	if err != nil {
		// A failed merge loses nothing durable; the raw feedback is in
		// the history already.
		l.Console.Say("Could not summarize preferences: %v", err)
		return nil
	}
	merged = strings.TrimSpace(merged)
	if merged == "" {
		return nil
	}

	l.Console.Say("\n--- Tuning Preferences Summary ---\n")
	l.Console.Say("%s", merged)
	return l.History.SaveSummary(ptype, merged)
}
