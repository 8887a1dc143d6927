package llm

import "regexp"

var codeFenceRe = regexp.MustCompile("(?s)^```(?:plantuml|puml|uml)?\\s*\\n?(.*?)\\n?```\\s*$")

// StripCodeFence removes a surrounding markdown code fence from a model
// reply. Replies that are not a single fenced block come back unchanged.
func StripCodeFence(text string) string {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}
