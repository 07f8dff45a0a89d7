package logutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForLog(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"empty input", "", 10, ""},
		{"zero limit", "Max rate limit reached", 0, "..."},
		{"shorter than limit", "NOTOK", 10, "NOTOK"},
		{"equal to limit", "NOTOK", 5, "NOTOK"},
		{"longer than limit", "Invalid API Key", 7, "Invalid..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateForLog(tt.input, tt.maxLen))
		})
	}
}

func TestTruncateForLog_LongPayload(t *testing.T) {
	got := TruncateForLog(strings.Repeat("a", 500), 200)
	assert.Len(t, got, 203)
	assert.True(t, strings.HasSuffix(got, "..."))
}
