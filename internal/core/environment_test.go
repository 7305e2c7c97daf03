package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironment(t *testing.T) {
	cases := map[string]Environment{
		"production": Production,
		" PROD ":     Production,
		"staging":    Staging,
		"test":       Testing,
		"":           Development,
		"whatever":   Development,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseEnvironment(in), in)
	}
	assert.True(t, Testing.IsLocal())
	assert.False(t, Staging.IsLocal())
	assert.True(t, Production.IsProduction())
}
