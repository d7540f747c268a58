// Package planner adapts Microsoft Planner tasks to the task.Source
// contract. One Planner plan is dedicated to WiFi automation; its open
// tasks carry the operation in the title ("ADDMAC - <owner> - <ssid>") and
// the MAC address in the task description ("<flow> # <mac>").
//
// Authentication uses a stored OAuth bearer token: the interactive grant
// happens out of band (the token file is the one the granting flow
// maintains), this package only reads it.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/logging"
	"github.com/efgnet/wifisync/pkg/task"
)

// DefaultBaseURL is the Microsoft Graph endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// DefaultTimeout bounds every Graph request.
const DefaultTimeout = 30 * time.Second

// Title tokens that mark a Planner task as a WiFi automation task. Other
// tasks in the plan are ignored entirely.
var automationTokens = []string{"ADDMAC", "DELMAC"}

// Config holds the task source settings.
type Config struct {
	// PlanID restricts processing to the dedicated automation plan
	PlanID string
	// TokenFile is the stored OAuth token (JSON with an access_token
	// field)
	TokenFile string
	// BaseURL overrides the Graph endpoint, for tests
	BaseURL string
}

// Client lists open automation tasks and marks them complete. It
// implements task.Source.
type Client struct {
	cfg   Config
	http  *http.Client
	etags map[string]string // task id -> @odata.etag, needed for PATCH
}

// New creates a Planner client.
func New(cfg Config) (*Client, error) {
	if cfg.PlanID == "" {
		return nil, errors.NewConfigError("planner.plan_id", "cannot be empty", nil)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: DefaultTimeout},
		etags: make(map[string]string),
	}, nil
}

// plannerTask is the subset of a Graph planner task wifisync reads.
type plannerTask struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	PlanID          string `json:"planId"`
	PercentComplete int    `json:"percentComplete"`
	ETag            string `json:"@odata.etag"`
}

// ListOpen returns the raw field sets of all open automation tasks in the
// configured plan. Completed tasks (percentComplete == 100) and tasks
// without an automation token are never reported, so the engine cannot
// re-process them.
func (c *Client) ListOpen(ctx context.Context) ([]task.Raw, error) {
	log := logging.FromContext(ctx)

	var listing struct {
		Value []plannerTask `json:"value"`
	}
	if err := c.get(ctx, "/me/planner/tasks", &listing); err != nil {
		return nil, err
	}

	var raws []task.Raw
	for _, pt := range listing.Value {
		if pt.PlanID != c.cfg.PlanID || pt.PercentComplete == 100 || !isAutomationTask(pt.Title) {
			continue
		}

		var details struct {
			Description string `json:"description"`
		}
		if err := c.get(ctx, "/planner/tasks/"+pt.ID+"/details", &details); err != nil {
			return nil, err
		}

		c.etags[pt.ID] = pt.ETag
		raws = append(raws, rawFromTask(pt, details.Description))
		log.Debug().Str("task_id", pt.ID).Str("title", pt.Title).Msg("open automation task")
	}
	return raws, nil
}

// MarkComplete sets the task to 100 percent complete.
func (c *Client) MarkComplete(ctx context.Context, id string) error {
	etag, ok := c.etags[id]
	if !ok {
		// Not listed in this session; fetch the current etag.
		var pt plannerTask
		if err := c.get(ctx, "/planner/tasks/"+id, &pt); err != nil {
			return err
		}
		etag = pt.ETag
	}

	body := map[string]int{"percentComplete": 100}
	return c.patch(ctx, "/planner/tasks/"+id, etag, body)
}

// rawFromTask maps the Planner payload onto the fixed decoder record.
// Title layout: "<token> - <owner> - <ssid>"; description layout:
// "<flow number> # <mac>". Missing segments are left empty and rejected by
// the decoder, never guessed at here.
func rawFromTask(pt plannerTask, description string) task.Raw {
	raw := task.Raw{ID: pt.ID, Title: pt.Title}

	if parts := strings.Split(pt.Title, " - "); len(parts) >= 3 {
		raw.CommentField = strings.TrimSpace(parts[1])
		raw.NetworkField = strings.TrimSpace(parts[2])
	}
	if parts := strings.Split(description, "#"); len(parts) >= 2 {
		raw.MACField = strings.TrimSpace(parts[1])
	}
	return raw
}

func isAutomationTask(title string) bool {
	for _, token := range automationTokens {
		if strings.Contains(title, token) {
			return true
		}
	}
	return false
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *Client) patch(ctx context.Context, path, etag string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPatch, path, payload, etag)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, etag string) ([]byte, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", "graph response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("graph rejected stored token (status %s): %w", resp.Status, errors.ErrNotAuthenticated)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("graph %s %s failed: %s %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// accessToken reads the bearer token from the token file.
func (c *Client) accessToken() (string, error) {
	data, err := os.ReadFile(c.cfg.TokenFile)
	if err != nil {
		return "", errors.NewConfigError("planner.token_file", "cannot read stored token (run the grant flow first)", err)
	}

	var stored struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return "", errors.NewConfigError("planner.token_file", "stored token is not valid JSON", err)
	}
	if stored.AccessToken == "" {
		return "", errors.NewConfigError("planner.token_file", "stored token has no access_token", errors.ErrNotAuthenticated)
	}
	return stored.AccessToken, nil
}
