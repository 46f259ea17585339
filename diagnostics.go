package decodex

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/vantyr/decodex/internal/text"
)

// DiagnosticsNode is a tree-shaped rendering of a search chain, one entry
// per TransformationStep, meant for a caller that wants to show a human
// operator how a result was reached rather than just the final plaintext.
type DiagnosticsNode struct {
	Step      TransformationStep
	Breakdown CostBreakdown
}

// RenderChain builds a readable, multi-line trace of chain paired with its
// per-step cost breakdowns, in root-to-leaf order.
func RenderChain(chain Chain, breakdowns []CostBreakdown) string {
	var b strings.Builder
	steps := chain.Steps()
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s", i+1, step.TransformationName)
		if step.Key != "" {
			fmt.Fprintf(&b, "(%s)", step.Key)
		}
		if step.Success {
			fmt.Fprintf(&b, " [confirmed by %s]", step.RecognizerName)
		}
		b.WriteString("\n")
		if i < len(breakdowns) {
			fmt.Fprintf(&b, "   %s\n", breakdowns[i].String())
		}
	}
	return b.String()
}

// SearchSummary is a human-readable report of one Search call, meant for a
// CLI's post-search output.
type SearchSummary struct {
	Input          string
	Found          bool
	Plaintext      string
	Chain          Chain
	RecognizerName string
	NodesExpanded  uint64
	VisitedSize    int
	Elapsed        time.Duration
	StartedAt      time.Time
}

// String renders the summary the way an operator reads it: a friendly
// elapsed-time phrase and comma-grouped counters via go-humanize, rather
// than raw nanoseconds or unseparated integers.
func (s SearchSummary) String() string {
	if !s.Found {
		return fmt.Sprintf(
			"no plaintext found for %q after %s (%s nodes expanded, %s visited)",
			text.Truncate(s.Input, 30), s.Elapsed.Round(time.Millisecond),
			humanize.Comma(int64(s.NodesExpanded)), humanize.Comma(int64(s.VisitedSize)),
		)
	}
	return fmt.Sprintf(
		"%q -> %q via %s (chain: %s), found %s, %s nodes expanded",
		text.Truncate(s.Input, 30), s.Plaintext, s.RecognizerName, s.Chain.String(),
		humanize.Time(s.StartedAt.Add(s.Elapsed)), humanize.Comma(int64(s.NodesExpanded)),
	)
}
