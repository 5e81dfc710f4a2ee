package farm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/tagfarm/pkg/farm"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name passes through", "My Clip", "My Clip"},
		{"path separators replaced", "a/b\\c", "a_b_c"},
		{"windows-unsafe characters replaced", `a:b*c?d"e<f>g|h`, "a_b_c_d_e_f_g_h"},
		{"run of unsafe characters collapses", "a//\\:b", "a_b"},
		{"literal underscores survive", "a__b", "a__b"},
		{"control characters replaced", "a\x00b\x1fc", "a_b_c"},
		{"whitespace trimmed", "  spaced  ", "spaced"},
		{"trailing dots trimmed", "name...", "name"},
		{"unicode preserved", "café — тест", "café — тест"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, farm.Sanitize(tt.input))
		})
	}
}

func TestSanitizeNeverEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "...", ". .", " .. "} {
		got := farm.Sanitize(input)
		assert.NotEmpty(t, got, "input %q", input)
		assert.True(t, strings.HasPrefix(got, "untitled-"), "input %q produced %q", input, got)
		assert.Len(t, got, len("untitled-")+6)
	}

	// All-unsafe input collapses to a single substitute, not the fallback.
	assert.Equal(t, "_", farm.Sanitize("///"))
}

func TestSanitizeDeterministic(t *testing.T) {
	inputs := []string{"My Clip", "", "///", "a:b", "café"}
	for _, input := range inputs {
		assert.Equal(t, farm.Sanitize(input), farm.Sanitize(input), "input %q", input)
	}

	// Distinct unsalvageable inputs get distinct fallbacks.
	assert.NotEqual(t, farm.Sanitize(""), farm.Sanitize("   "))
}
