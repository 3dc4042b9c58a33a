package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBookingReferenceFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^HIVE-[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ref := newBookingReference()
		assert.Regexp(t, pattern, ref)
		seen[ref] = true
	}
	// Collisions over 200 random 32-bit draws are possible but vanishingly
	// unlikely; a wholesale repeat means the source is broken.
	assert.Greater(t, len(seen), 190)
}
