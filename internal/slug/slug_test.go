package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"apostrophe stripped", "You don't know JS", "you-dont-know-js"},
		{"punctuation collapsed", "Data Vis: Python & JS!", "data-vis-python-js"},
		{"typographic apostrophe", "Don’t Panic", "dont-panic"},
		{"tabs and underscores", "go\t_web__dev", "go-web-dev"},
		{"leading and trailing delimiters", "  (Clean Code)  ", "clean-code"},
		{"brackets and slashes", "C/C++ [2nd ed.]", "c-c++-2nd-ed"},
		{"digits kept", "Python 3.12", "python-3-12"},
		{"empty", "", ""},
		{"only delimiters", "?!  --", ""},
		{"already normalized", "python-basics", "python-basics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"You don't know JS",
		"Data Vis: Python & JS!",
		"  Héllo   Wörld ",
		"a--b__c",
		"C/C++ [2nd ed.]",
		"",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestUnique(t *testing.T) {
	t.Run("free base is returned unchanged", func(t *testing.T) {
		assert.Equal(t, "python", Unique(nil, "Python"))
		assert.Equal(t, "python", Unique([]string{"go"}, "Python"))
	})

	t.Run("first collision gets suffix 1", func(t *testing.T) {
		assert.Equal(t, "python-1", Unique([]string{"python"}, "Python"))
	})

	t.Run("suffixes increase", func(t *testing.T) {
		assert.Equal(t, "python-2", Unique([]string{"python", "python-1"}, "Python"))
	})

	t.Run("freed numbers below the first gap are reused in order", func(t *testing.T) {
		assert.Equal(t, "python-1", Unique([]string{"python", "python-2"}, "Python"))
	})

	t.Run("result never in existing", func(t *testing.T) {
		existing := []string{}
		for i := 0; i < 20; i++ {
			s := Unique(existing, "Learning Go")
			assert.NotContains(t, existing, s)
			existing = append(existing, s)
		}
		assert.Equal(t, "learning-go", existing[0])
		assert.Equal(t, "learning-go-19", existing[19])
	})
}
