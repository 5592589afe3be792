// Package prompt renders transaction data into the fixed prompt templates
// sent to the generation service.
package prompt

import (
	"fmt"
	"strings"

	"sintesi/internal/core"
)

const monthlyRules = `You are a personal finance assistant writing a spending summary.

Rules:
- The totals above are precomputed and authoritative. Do NOT recompute,
  verify or correct them; repeat them as given.
- Mention the largest spending categories and anything avoidable.
- Neutral tone, plain text, no markdown.
- At most 120 words.`

const yearlyRules = `You are a personal finance assistant writing a yearly spending review.

Rules:
- Base the review only on the monthly summaries above.
- Narrate how spending changed month over month, in chronological order.
- Neutral tone, plain text, no markdown.
- At most 150 words.`

// Monthly builds the prompt for one month of transactions. The computed
// totals are embedded as ground truth; the instruction forbidding the model
// from recomputing them guards against arithmetic drift.
func Monthly(p core.Period, totals core.Totals, txs []core.Transaction) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summarize these transactions for %d/%d:\n\n", p.Month, p.Year)
	b.WriteString(TransactionLines(txs))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Precomputed totals (ground truth):\n")
	fmt.Fprintf(&b, "- Total spent: %s\n", totals.Spent)
	fmt.Fprintf(&b, "- Total received: %s\n", totals.Received)
	fmt.Fprintf(&b, "- Net balance: %s\n\n", totals.Net)

	b.WriteString(monthlyRules)
	return b.String()
}

// Yearly builds the prompt for a full year from persisted monthly summaries.
// Only summary text per month goes in, never raw transactions, so the prompt
// size is bounded by twelve entries regardless of transaction volume.
// months must already be sorted by month ascending.
func Yearly(userID string, year int, months []core.MonthlySummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summarize the %d spending of this user from their monthly summaries:\n\n", year)
	for _, m := range months {
		fmt.Fprintf(&b, "Month %d/%d:\n%s\n\n", m.Month, m.Year, m.Summary)
	}

	b.WriteString(yearlyRules)
	return b.String()
}

// TransactionLines renders transactions one per line as "DATE: TYPE of AMOUNT".
func TransactionLines(txs []core.Transaction) string {
	lines := make([]string, len(txs))
	for i, tx := range txs {
		lines[i] = fmt.Sprintf("%s: %s of %s", tx.Date, tx.Type, tx.Amount)
	}
	return strings.Join(lines, "\n")
}
