package agent

import "github.com/kittclouds/noteagent/internal/llm"

// DefaultHistoryBudget caps the conversation history carried into a prompt,
// in estimated tokens.
const DefaultHistoryBudget = 2000

// EstimateTokens estimates token count using the ~4 chars/token heuristic.
// Good enough for budget trimming. Not billing-accurate.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	// Round up: (len + 3) / 4
	return (len(text) + 3) / 4
}

// EstimateMessagesTokens sums the estimate over a message sequence.
func EstimateMessagesTokens(messages []llm.Message) int {
	total := 0
	for _, m := range messages {
		total += EstimateTokens(m.Content)
	}
	return total
}

// TrimToBudget drops the oldest messages until the history fits the budget.
// The most recent messages always survive; a single oversized message is
// kept rather than returning an empty history.
func TrimToBudget(messages []llm.Message, budget int) []llm.Message {
	if budget <= 0 || len(messages) == 0 {
		return messages
	}

	total := EstimateMessagesTokens(messages)
	start := 0
	for start < len(messages)-1 && total > budget {
		total -= EstimateTokens(messages[start].Content)
		start++
	}
	return messages[start:]
}
