package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookmarkd/internal/domain"
	"bookmarkd/internal/utils"
)

// Client talks to the bookmark API with one user's credential.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds an API client. baseURL has no trailing slash,
// ex: "https://bookmarks.example.com".
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// List fetches the caller's full bookmark collection.
func (c *Client) List(ctx context.Context) ([]domain.Bookmark, error) {
	var resp struct {
		Bookmarks []domain.Bookmark `json:"bookmarks"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookmarks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Bookmarks, nil
}

// Create stores a bookmark and returns the server-assigned record.
func (c *Client) Create(ctx context.Context, url, title string) (domain.Bookmark, error) {
	body := map[string]string{"url": url, "title": title}
	var resp struct {
		Bookmark domain.Bookmark `json:"bookmark"`
	}
	if err := c.do(ctx, http.MethodPost, "/bookmarks", body, &resp); err != nil {
		return domain.Bookmark{}, err
	}
	return resp.Bookmark, nil
}

// Delete removes a bookmark by id. Succeeds even if already gone.
func (c *Client) Delete(ctx context.Context, id string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	return c.do(ctx, http.MethodDelete, "/bookmarks/"+id, nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("failed to parse %s %s response: %w", method, path, err)
		}
	}
	return nil
}
