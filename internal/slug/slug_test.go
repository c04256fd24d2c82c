package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "My Papers", "my-papers"},
		{"punctuation dropped", "My Papers!", "my-papers"},
		{"separator runs collapse", "a - b __ c .. d", "a-b-c-d"},
		{"leading trailing trimmed", "  --hello--  ", "hello"},
		{"already slug", "research-2024", "research-2024"},
		{"dots and underscores", "deep_learning.notes", "deep-learning-notes"},
		{"accents fold to ascii", "Résumé Café", "resume-cafe"},
		{"only punctuation", "!!!", ""},
		{"only separators", " -_. ", ""},
		{"empty", "", ""},
		{"cjk drops to empty", "论文", ""},
		{"mixed cjk and ascii", "论文 notes", "notes"},
		{"digits kept", "Vol. 2, Issue 10", "vol-2-issue-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.input))
		})
	}
}
