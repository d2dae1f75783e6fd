package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferralCodePrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Jane Doe", "JANEDO"},
		{"al", "AL"},
		{"Zoë Müller-Smith", "ZOMLLE"},
		{"  123 !!", "REF"},
		{"", "REF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReferralCodePrefix(tt.name))
		})
	}
}

func TestRandomSuffix(t *testing.T) {
	s, err := randomSuffix(codeSuffixLength)
	require.NoError(t, err)
	assert.Len(t, s, codeSuffixLength)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(letterBytes, r), "unexpected rune %q", r)
	}
}

func TestGenerateKey(t *testing.T) {
	a, err := GenerateKey("pk_")
	require.NoError(t, err)
	b, err := GenerateKey("pk_")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "pk_"))
	assert.Len(t, a, len("pk_")+64)
	assert.NotEqual(t, a, b)
}
