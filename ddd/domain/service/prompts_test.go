package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecoratePromptsAppendsSuffixes(t *testing.T) {
	prompt, neg := DecoratePrompts("a castle", "blurry", "masterpiece", "lowres")

	assert.Equal(t, "a castle, masterpiece", prompt)
	assert.Equal(t, "blurry, lowres", neg)
}

func TestDecoratePromptsStripsQuotes(t *testing.T) {
	prompt, neg := DecoratePrompts(`a "red" dragon`, `"text"`, "", "")

	assert.Equal(t, "a red dragon", prompt)
	assert.Equal(t, "text", neg)
}

func TestDecoratePromptsEmptyNegativeFallsBackToSuffix(t *testing.T) {
	_, neg := DecoratePrompts("a castle", "", "", "lowres")

	assert.Equal(t, "lowres", neg)
}

func TestDecoratePromptsNoSuffixes(t *testing.T) {
	prompt, neg := DecoratePrompts(" a castle ", "blurry", "", "")

	assert.Equal(t, "a castle", prompt)
	assert.Equal(t, "blurry", neg)
}
