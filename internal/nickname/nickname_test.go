package nickname

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var generatedPattern = regexp.MustCompile(`^[a-z]+_[a-z]+_\d{1,3}$`)

func TestGenerateFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := Generate()
		assert.True(t, generatedPattern.MatchString(n), "unexpected nickname %q", n)
		assert.GreaterOrEqual(t, len(n), 3)
		assert.LessOrEqual(t, len(n), 50)
	}
}

func TestGenerateVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[Generate()] = true
	}
	// Collisions are possible but 50 identical draws are not.
	assert.Greater(t, len(seen), 1)
}
