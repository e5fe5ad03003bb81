package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "For", "for"},
		{"trims edges", "  range  ", "range"},
		{"collapses runs", "int \t main", "int main"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"already canonical", "while", "while"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAnswer(tt.in))
		})
	}
}

func TestNormalizeAnswerIdempotent(t *testing.T) {
	inputs := []string{"", "  For  Range ", "A\tB\nC", "already normal", "ÜPPER"}
	for _, s := range inputs {
		once := NormalizeAnswer(s)
		assert.Equal(t, once, NormalizeAnswer(once))
	}
}

func TestAnswerEqual(t *testing.T) {
	assert.True(t, AnswerEqual("For", "for"))
	assert.True(t, AnswerEqual("  int  main ", "int main"))
	assert.False(t, AnswerEqual("for", "range"))

	// blank never matches blank
	assert.False(t, AnswerEqual("", ""))
	assert.False(t, AnswerEqual("  ", ""))
	assert.False(t, AnswerEqual("", "for"))
	assert.False(t, AnswerEqual("for", "   "))
}
