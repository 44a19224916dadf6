package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSummary(t *testing.T) {
	t.Run("summary with tags line", func(t *testing.T) {
		response := "Raft elects a leader and replicates a log.\n\nTags: raft, consensus, distributed systems"
		summary := parseSummary(response, 5)

		assert.Equal(t, "Raft elects a leader and replicates a log.", summary.Content)
		assert.Equal(t, []string{"raft", "consensus", "distributed systems"}, summary.Tags)
	})

	t.Run("tags are lowercased and capped", func(t *testing.T) {
		response := "Text.\nTags: Alpha, BETA, Gamma, Delta"
		summary := parseSummary(response, 2)

		assert.Equal(t, []string{"alpha", "beta"}, summary.Tags)
	})

	t.Run("missing tags line still yields summary", func(t *testing.T) {
		summary := parseSummary("Just a plain summary without tags.", 5)

		assert.Equal(t, "Just a plain summary without tags.", summary.Content)
		assert.Empty(t, summary.Tags)
	})

	t.Run("empty tag entries are dropped", func(t *testing.T) {
		summary := parseSummary("Text.\nTags: one, , two,", 5)
		assert.Equal(t, []string{"one", "two"}, summary.Tags)
	})
}
