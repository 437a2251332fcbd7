package prompt

import (
	"github.com/poiesic/lectio/core"
)

// TokenCounter estimates the token count of an ordered message sequence.
// tokens.Estimator satisfies it.
type TokenCounter interface {
	Estimate(messages []core.Message, modelID string) int
}

// BuildMessages assembles the prompt for a single model call.
//
// The result is the system message, the few-shot examples as alternating
// user and assistant messages, as many of the most recent history turns as fit
// within maxTokens, and finally the user message carrying userContent.
// History is grouped into turns of a user message and its assistant reply; a
// trailing user message without a reply is a turn of its own. The one
// exception is a trailing user message whose content equals userContent:
// that is the current turn, already carried by the final message, so it is
// not repeated. The system message, few-shots
// and final user message are always present, even when they alone exceed the
// budget.
func BuildMessages(counter TokenCounter, systemPrompt, modelID string, history []core.Message, userContent string, maxTokens int, fewShots []core.FewShotExample) []core.Message {
	prefix := make([]core.Message, 0, 1+2*len(fewShots))
	prefix = append(prefix, core.SystemMessage(systemPrompt))
	for _, shot := range fewShots {
		prefix = append(prefix, core.UserMessage(shot.User), core.AssistantMessage(shot.Assistant))
	}
	final := core.UserMessage(userContent)

	if n := len(history); n > 0 && history[n-1].Role == core.RoleUser && history[n-1].Content == userContent {
		history = history[:n-1]
	}

	turns := groupTurns(history)
	var middle []core.Message
	for i := len(turns) - 1; i >= 0; i-- {
		candidate := make([]core.Message, 0, len(turns[i])+len(middle))
		candidate = append(candidate, turns[i]...)
		candidate = append(candidate, middle...)
		if counter.Estimate(assemble(prefix, candidate, final), modelID) > maxTokens {
			break
		}
		middle = candidate
	}

	return assemble(prefix, middle, final)
}

// groupTurns splits chronological history into turns. A turn is a user
// message followed by its assistant reply; either may be missing at the edges
// of the history. System messages in history are ignored.
func groupTurns(history []core.Message) [][]core.Message {
	var turns [][]core.Message
	for _, msg := range history {
		switch msg.Role {
		case core.RoleUser:
			turns = append(turns, []core.Message{msg})
		case core.RoleAssistant:
			last := len(turns) - 1
			if last >= 0 && len(turns[last]) == 1 && turns[last][0].Role == core.RoleUser {
				turns[last] = append(turns[last], msg)
			} else {
				turns = append(turns, []core.Message{msg})
			}
		}
	}
	return turns
}

func assemble(prefix, middle []core.Message, final core.Message) []core.Message {
	out := make([]core.Message, 0, len(prefix)+len(middle)+1)
	out = append(out, prefix...)
	out = append(out, middle...)
	return append(out, final)
}
