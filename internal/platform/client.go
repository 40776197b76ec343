package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Client is the REST implementation of Gateway.
type Client struct {
	baseURL string
	token   string
	guildID string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a gateway client for one guild.
func NewClient(baseURL, token, guildID string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		guildID: guildID,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type apiError struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("gateway %s %s: %s", method, path, apiErr.Message)
		}
		return fmt.Errorf("gateway %s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return nil
}

var errNotFound = fmt.Errorf("member not found")

// ListMembers returns the full guild roster.
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	var members []Member
	path := fmt.Sprintf("/guilds/%s/members", url.PathEscape(c.guildID))
	if err := c.do(ctx, http.MethodGet, path, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// GetMember returns one member, or nil when they have left the guild.
func (c *Client) GetMember(ctx context.Context, id string) (*Member, error) {
	var m Member
	path := fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(c.guildID), url.PathEscape(id))
	err := c.do(ctx, http.MethodGet, path, &m)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AddRole grants roleID to the member.
func (c *Client) AddRole(ctx context.Context, memberID, roleID string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s/roles/%s",
		url.PathEscape(c.guildID), url.PathEscape(memberID), url.PathEscape(roleID))
	return c.do(ctx, http.MethodPut, path, nil)
}

// Kick removes the member from the guild with an audit reason.
func (c *Client) Kick(ctx context.Context, memberID, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s?reason=%s",
		url.PathEscape(c.guildID), url.PathEscape(memberID), url.QueryEscape(reason))
	return c.do(ctx, http.MethodDelete, path, nil)
}

// AgentRank returns the acting agent's own top-role position.
func (c *Client) AgentRank(ctx context.Context) (int, error) {
	var agent struct {
		Rank int `json:"rank"`
	}
	path := fmt.Sprintf("/guilds/%s/agent", url.PathEscape(c.guildID))
	if err := c.do(ctx, http.MethodGet, path, &agent); err != nil {
		return 0, err
	}
	return agent.Rank, nil
}
