package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	s := NewFileTokenStore(path)

	// Missing file reads as no token.
	tok, err := s.Read()
	require.NoError(t, err)
	assert.Nil(t, tok)

	require.NoError(t, s.Write(&OAuthToken{AccessToken: "abc", TokenType: "Bearer"}))
	tok, err = s.Read()
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)

	require.NoError(t, s.Clear())
	tok, err = s.Read()
	require.NoError(t, err)
	assert.Nil(t, tok)

	// Clearing twice is fine.
	assert.NoError(t, s.Clear())
}

func TestFileTokenStoreRejectsEmptyToken(t *testing.T) {
	s := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))
	assert.Error(t, s.Write(nil))
	assert.Error(t, s.Write(&OAuthToken{}))
}
