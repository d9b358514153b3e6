package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookmarkd/internal/utils"
)

// UserinfoVerifier validates tokens by calling the identity provider's
// userinfo endpoint with the caller's bearer token. Any non-200 answer is
// treated as an invalid credential; the provider is the sole authority.
type UserinfoVerifier struct {
	endpoint string
	client   *http.Client
}

type userinfoResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// NewUserinfoVerifier builds a verifier for the given userinfo endpoint.
func NewUserinfoVerifier(endpoint string, timeout time.Duration) *UserinfoVerifier {
	return &UserinfoVerifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (v *UserinfoVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Identity{}, ErrInvalidToken
	}

	var info userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Identity{}, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	if info.Sub == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: info.Sub, Email: info.Email}, nil
}
