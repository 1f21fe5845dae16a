package assistant

import "strings"

// Respond maps a query to a canned reply. Matching is case-insensitive and
// the first matching rule wins.
func Respond(query string) string {
	q := strings.ToLower(query)
	for _, r := range rules {
		if r.matches(q) {
			return r.reply
		}
	}
	return FallbackReply
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
