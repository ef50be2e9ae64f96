package utils

import "strings"

// Telegram hard limits for quiz polls.
const (
	PollQuestionMaxLen = 300
	PollOptionMaxLen   = 100
)

// TruncateRunes cuts s to at most n runes, appending an ellipsis when cut.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

// EscapeHTML escapes the characters Telegram's HTML parse mode cares about.
func EscapeHTML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(s)
}
