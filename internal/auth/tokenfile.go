package auth

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TokenFileVerifier resolves identities from a static YAML token file.
// Meant for dev and self-hosted single-user deployments where running a
// full identity provider is overkill.
//
// File format:
//
//	tokens:
//	  - token: s3cret
//	    userId: user-1
//	    email: me@example.com
type TokenFileVerifier struct {
	identities map[string]Identity
}

type tokenFileSchema struct {
	Tokens []struct {
		Token  string `yaml:"token"`
		UserID string `yaml:"userId"`
		Email  string `yaml:"email"`
	} `yaml:"tokens"`
}

// LoadTokenFile reads and parses the token file once at startup.
func LoadTokenFile(path string) (*TokenFileVerifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var schema tokenFileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	identities := make(map[string]Identity, len(schema.Tokens))
	for i, entry := range schema.Tokens {
		if entry.Token == "" || entry.UserID == "" {
			return nil, fmt.Errorf("token file entry %d is missing token or userId", i)
		}
		identities[entry.Token] = Identity{UserID: entry.UserID, Email: entry.Email}
	}

	return &TokenFileVerifier{identities: identities}, nil
}

// NewStaticVerifier builds a verifier from an in-memory token map. Used by
// tests and embedders.
func NewStaticVerifier(identities map[string]Identity) *TokenFileVerifier {
	m := make(map[string]Identity, len(identities))
	for k, v := range identities {
		m[k] = v
	}
	return &TokenFileVerifier{identities: m}
}

func (v *TokenFileVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	id, ok := v.identities[token]
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}
