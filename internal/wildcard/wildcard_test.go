package wildcard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/ircscript/internal/wildcard"
)

func TestMatch(t *testing.T) {
	for _, tc := range []struct {
		pat, s string
		want   bool
	}{
		{"alice*", "alice", true},
		{"alice*", "alice!user@host", true},
		{"alice*", "alicia", false},
		{"alice", "alice", true},
		{"alice", "aliceh", false},
		{"a?ice", "alice", true},
		{"a?ice", "aliice", false},
		{"[Aa]lice", "alice", true},
		{"[Aa]lice", "Alice", true},
		{"[^a]lice", "Blice", true},
		{"[^a]lice", "alice", false},
		{"*", "anything", true},
		{"*", "", true},
		{"ALICE", "alice", true},
	} {
		got := wildcard.Match(tc.pat, tc.s)
		assert.Equalf(t, tc.want, got, "Match(%q, %q)", tc.pat, tc.s)
	}
}

func TestLongestMatchLen(t *testing.T) {
	a := wildcard.LongestMatchLen("alice*", "alice hi")
	b := wildcard.LongestMatchLen("alice", "alice hi")
	assert.Equal(t, -1, b)
	assert.Greater(t, a, -1)
}
