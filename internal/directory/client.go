package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when the directory has no user for a handle.
var ErrNotFound = errors.New("directory: user not found")

// User is a directory record for a handle: the stable id participants are
// merged on, plus the person's current full name.
type User struct {
	ExternalID string
	FullName   string
}

// Client resolves "@handle" references against an external user directory.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type lookupResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
}

// LookupHandle fetches the directory record for a handle. The leading "@" is
// stripped before the request.
func (c *Client) LookupHandle(ctx context.Context, handle string) (*User, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")

	reqURL := fmt.Sprintf("%s/users/lookup?handle=%s", c.baseURL, url.QueryEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory: status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if body.ID == "" {
		return nil, ErrNotFound
	}

	fullName := body.FirstName
	if body.LastName != "" {
		fullName = body.FirstName + " " + body.LastName
	}

	return &User{ExternalID: body.ID, FullName: fullName}, nil
}
