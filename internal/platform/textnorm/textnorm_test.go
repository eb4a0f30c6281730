package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	// "é" as e + combining acute
	decomposed := "Cafe\u0301 "
	assert.Equal(t, "Caf\u00e9", Clean(decomposed))
	assert.Equal(t, "", Clean("   "))
}

func TestCleanPtr(t *testing.T) {
	assert.Nil(t, CleanPtr(nil))
	blank := "  "
	assert.Nil(t, CleanPtr(&blank))
	v := " Lab "
	got := CleanPtr(&v)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Lab", *got)
	}
}
