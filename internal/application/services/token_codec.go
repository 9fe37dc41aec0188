package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/seldo/newww/internal/core/domain/verification"
	"github.com/seldo/newww/internal/core/ports"
)

// tokenBytes gives 240 bits of entropy per token.
const tokenBytes = 30

// TokenCodec issues URL-safe confirmation tokens and hashes them into store keys.
type TokenCodec struct{}

func NewTokenCodec() *TokenCodec {
	return &TokenCodec{}
}

var _ ports.TokenCodec = (*TokenCodec)(nil)

// IssueToken returns a fresh random token safe to embed in a URL path segment.
func (c *TokenCodec) IssueToken() (verification.Token, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return verification.Token(base64.RawURLEncoding.EncodeToString(buf)), nil
}

// LookupKey derives the storage key for token. The raw token never reaches the store.
func (c *TokenCodec) LookupKey(token verification.Token) verification.Key {
	sum := sha256.Sum256([]byte(token))
	return verification.Key(hex.EncodeToString(sum[:]))
}
