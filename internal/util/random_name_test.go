package util

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRandomName(t *testing.T) {
	random = rand.New(rand.NewSource(0)) // nolint:gosec
	first := GetRandomName()

	random = rand.New(rand.NewSource(0)) // nolint:gosec
	assert.Equal(t, first, GetRandomName(), "names follow the random source")

	parts := strings.SplitN(first, " ", 2)
	assert.Equal(t, 2, len(parts))
	assert.Contains(t, adjectives, parts[0])
	assert.Contains(t, nouns, parts[1])
}
