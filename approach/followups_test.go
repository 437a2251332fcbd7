package approach

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFollowups(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantBody  string
		wantQuest []string
	}{
		{
			name:      "single question",
			content:   "Here is answer to your question.<<What is the dress code?>>",
			wantBody:  "Here is answer to your question.",
			wantQuest: []string{"What is the dress code?"},
		},
		{
			name: "three questions on separate lines",
			content: `Here is answer to your question.

<<What are some examples of successful product launches they should have experience with?>>
<<Are there any specific technical skills or certifications required for the role?>>
<<Is there a preference for candidates with experience in a specific industry or sector?>>`,
			wantBody: "Here is answer to your question.\n\n",
			wantQuest: []string{
				"What are some examples of successful product launches they should have experience with?",
				"Are there any specific technical skills or certifications required for the role?",
				"Is there a preference for candidates with experience in a specific industry or sector?",
			},
		},
		{
			name:      "no questions",
			content:   "Here is answer to your question.",
			wantBody:  "Here is answer to your question.",
			wantQuest: []string{},
		},
		{
			name:      "only questions",
			content:   "<<What is the dress code?>>",
			wantBody:  "",
			wantQuest: []string{"What is the dress code?"},
		},
		{
			name:      "empty content",
			content:   "",
			wantBody:  "",
			wantQuest: []string{},
		},
		{
			name:      "unterminated span is text",
			content:   "Pay by deposit. <<When is it due?",
			wantBody:  "Pay by deposit. <<When is it due?",
			wantQuest: []string{},
		},
		{
			name:      "closing delimiter alone is text",
			content:   "Values >> 100 are rejected.",
			wantBody:  "Values >> 100 are rejected.",
			wantQuest: []string{},
		},
		{
			name:      "text between spans is kept",
			content:   "Answer. <<First?>> See [a.pdf]. <<Second?>>",
			wantBody:  "Answer.  See [a.pdf]. ",
			wantQuest: []string{"First?", "Second?"},
		},
		{
			name:      "trailing unterminated span after a question",
			content:   "Answer.<<First?>> <<Second?",
			wantBody:  "Answer. <<Second?",
			wantQuest: []string{"First?"},
		},
		{
			name:      "stray opening delimiter in body",
			content:   "Use a << b shift.<<Why?>>",
			wantBody:  "Use a << b shift.",
			wantQuest: []string{"Why?"},
		},
		{
			name:      "stray closing delimiter before a question",
			content:   "Values >> 100 are rejected.<<Which values pass?>>",
			wantBody:  "Values >> 100 are rejected.",
			wantQuest: []string{"Which values pass?"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, questions := ExtractFollowups(tt.content)
			assert.Equal(t, tt.wantBody, body)
			assert.NotNil(t, questions)
			assert.Equal(t, tt.wantQuest, questions)
		})
	}
}

func TestExtractFollowupsRecoversAppendedQuestions(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"contract", "payment", "deposit", "clause", "value", "tires", "(a)", "[doc.pdf]", "\n", "?", "<<"}

	for i := 0; i < 200; i++ {
		var body strings.Builder
		for n := rng.Intn(12); n > 0; n-- {
			body.WriteString(words[rng.Intn(len(words))])
			body.WriteString(" ")
		}
		questions := make([]string, rng.Intn(4))
		content := body.String()
		for j := range questions {
			questions[j] = fmt.Sprintf("Question %d about %s?", j, words[rng.Intn(6)])
			content += "<<" + questions[j] + ">>"
		}

		gotBody, gotQuestions := ExtractFollowups(content)
		assert.Equal(t, body.String(), gotBody, "content %q", content)
		assert.Equal(t, questions, gotQuestions, "content %q", content)
	}
}
