package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/rohits-web03/notevault/internal/errors"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"x,y", []string{"x", "y"}},
		{"Foo, bar, FOO", []string{"foo", "bar"}},
		{" , ,go,, ", []string{"go"}},
		{"Machine Learning,  AI ", []string{"machine learning", "ai"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTags(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTags_TooLong(t *testing.T) {
	_, err := ParseTags("ok," + strings.Repeat("a", 51))
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Contains(t, err.(*domainerrors.Error).FieldErrors(), "tags")
}
