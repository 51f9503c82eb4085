package questions

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "numbered list with short fragment",
			raw:  "1. What is polymorphism\n2. Describe your cloud experience.\n- ok",
			want: []string{"What is polymorphism?", "Describe your cloud experience?"},
		},
		{
			name: "keeps existing question marks",
			raw:  "How do you design a REST API?\nWhy did you pick Go?",
			want: []string{"How do you design a REST API?", "Why did you pick Go?"},
		},
		{
			name: "strips bullets headings and bold",
			raw:  "* Tell me about Kafka\n• Walk me through a deploy\n## Explain your testing strategy\n**1. How do you mentor juniors?**\n- **What is your biggest win?**",
			want: []string{
				"Tell me about Kafka?",
				"Walk me through a deploy?",
				"Explain your testing strategy?",
				"How do you mentor juniors?",
				"What is your biggest win?",
			},
		},
		{
			name: "drops dangling endings",
			raw:  "Describe the architecture of\nWhat tools do you use for testing and\nHow do you deal with\nWhat do you enjoy about backend work?",
			want: []string{"What do you enjoy about backend work?"},
		},
		{
			name: "dangling check ignores trailing punctuation and case",
			raw:  "Tell me about your time in.\nWhat did you learn AND\nWhich stack do you prefer?",
			want: []string{"Which stack do you prefer?"},
		},
		{
			name: "dedupes case-insensitively keeping first",
			raw:  "What is a goroutine?\nwhat is a GOROUTINE?\nWhat is a channel?",
			want: []string{"What is a goroutine?", "What is a channel?"},
		},
		{
			name: "blank lines and parenthesised markers",
			raw:  "\n\n(1) What is a mutex?\n\n   \n) How does GC work?\n",
			want: []string{"What is a mutex?", "How does GC work?"},
		},
		{
			name: "rough fallback splits on commas and semicolons",
			raw:  "Go; Rust\nSQL",
			want: []string{"Go", "Rust", "SQL"},
		},
		{
			name: "sentinel when nothing usable",
			raw:  "  \n\n , ; ",
			want: []string{NoQuestions},
		},
		{
			name: "empty input",
			raw:  "",
			want: []string{NoQuestions},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestParseCapsAtTen(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 15; i++ {
		fmt.Fprintf(&b, "%d. What did you build in project number %d?\n", i, i)
	}

	got := Parse(b.String())
	require.Len(t, got, MaxQuestions)
	assert.Equal(t, "What did you build in project number 1?", got[0])
	assert.Equal(t, "What did you build in project number 10?", got[9])
}

func TestParseRoughFallbackCapsAtTen(t *testing.T) {
	got := Parse("a,b,c,d,e,f,g,h,i,j,k,l")
	assert.Len(t, got, MaxQuestions)
}

func TestParseDeterministicAndInvariants(t *testing.T) {
	inputs := []string{
		"1. What is polymorphism\n2. Describe your cloud experience.\n- ok",
		"Here are your questions:\n\n1. **How do you scale Postgres?**\n2. Explain CAP theorem.\n3. Explain CAP theorem.\n4. What is the role of",
		strings.Repeat("Tell me about a hard bug you fixed.\nWhat motivates you at work?\n", 20),
	}

	for _, in := range inputs {
		first := Parse(in)
		second := Parse(in)
		require.Equal(t, first, second)

		require.LessOrEqual(t, len(first), MaxQuestions)
		seen := map[string]bool{}
		for _, q := range first {
			assert.True(t, strings.HasSuffix(q, "?"), "missing ?: %q", q)
			assert.GreaterOrEqual(t, len(strings.Fields(q)), 3, "too short: %q", q)
			key := strings.ToLower(q)
			assert.False(t, seen[key], "duplicate: %q", q)
			seen[key] = true
		}
	}
}
