package approach

import "strings"

const (
	followupOpen  = "<<"
	followupClose = ">>"
)

// ExtractFollowups splits model output into the answer body and the
// follow-up questions marked as <<question>>.
//
// Each closing delimiter pairs with the nearest opening delimiter before it;
// delimiters left without a partner are ordinary text. Every span is
// collected in order of appearance and removed from the body, along with
// whitespace between or after spans. Without spans the body is content
// unchanged and the slice is empty but not nil.
func ExtractFollowups(content string) (string, []string) {
	followups := []string{}

	var body strings.Builder
	rest := content
	from := 0
	seenSpan := false
	for {
		end := strings.Index(rest[from:], followupClose)
		if end < 0 {
			break
		}
		end += from
		start := strings.LastIndex(rest[:end], followupOpen)
		if start < 0 {
			from = end + len(followupClose)
			continue
		}
		text := rest[:start]
		if !seenSpan || strings.TrimSpace(text) != "" {
			body.WriteString(text)
		}
		followups = append(followups, rest[start+len(followupOpen):end])
		rest = rest[end+len(followupClose):]
		from = 0
		seenSpan = true
	}
	if !seenSpan || strings.TrimSpace(rest) != "" {
		body.WriteString(rest)
	}
	return body.String(), followups
}
