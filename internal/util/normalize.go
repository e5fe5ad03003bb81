package util

import "strings"

// NormalizeAnswer canonicalizes an answer string for comparison: leading and
// trailing whitespace is trimmed, internal whitespace runs collapse to a
// single space, and the result is lowercased.
func NormalizeAnswer(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Join(fields, " "))
}

// AnswerEqual reports whether two answers match under normalization. Two
// blank answers never match: an absent submission can not "equal" an absent
// canonical answer.
func AnswerEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	return NormalizeAnswer(a) == NormalizeAnswer(b)
}
