// Package unifi is a thin client for the UniFi controller REST API,
// covering exactly the WLAN configuration surface wifisync needs: resolving
// a WLAN by SSID, reading and replacing its MAC filter list, and toggling
// filter mode. The controller's native filter operation is a full-list
// replace; there is no incremental add/remove at this level.
package unifi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/logging"
	"github.com/efgnet/wifisync/pkg/mac"
)

// FilterPolicy selects whitelist or blacklist semantics for a WLAN's MAC
// filter.
type FilterPolicy string

const (
	// PolicyAllow runs the filter as an allow-list (whitelist).
	PolicyAllow FilterPolicy = "allow"
	// PolicyDeny runs the filter as a deny-list (blacklist).
	PolicyDeny FilterPolicy = "deny"
)

// DefaultTimeout bounds every controller HTTP request.
const DefaultTimeout = 30 * time.Second

// Config holds the connection settings for one controller.
type Config struct {
	// Host is the controller base URL, e.g. https://cloudkey.local:8443
	Host string
	// Site is the UniFi site name, almost always "default"
	Site string
	User     string
	Password string
	// InsecureSkipVerify disables TLS verification for the self-signed
	// certificates CloudKey devices ship with
	InsecureSkipVerify bool
}

// Client is a session-holding UniFi API client. It logs in lazily on the
// first request and retries once after a 401 in case the session cookie
// expired.
type Client struct {
	cfg     Config
	http    *http.Client
	wlanIDs map[string]string // SSID -> WLAN _id cache
}

// New creates a controller client. It does not contact the controller yet.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.NewConfigError("controller.host", "cannot be empty", nil)
	}
	if cfg.Site == "" {
		cfg.Site = "default"
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   DefaultTimeout,
		},
		wlanIDs: make(map[string]string),
	}, nil
}

// envelope is the controller's standard response wrapper.
type envelope struct {
	Meta struct {
		RC      string `json:"rc"`
		Message string `json:"msg"`
	} `json:"meta"`
	Data json.RawMessage `json:"data"`
}

// wlanConf is the subset of a WLAN configuration wifisync reads.
type wlanConf struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	MACFilterList []string `json:"mac_filter_list"`
}

// Login establishes a controller session.
func (c *Client) Login(ctx context.Context) error {
	body := map[string]string{"username": c.cfg.User, "password": c.cfg.Password}
	if _, err := c.do(ctx, http.MethodPost, "/api/login", body); err != nil {
		return errors.NewControllerError("login", "", statusCode(err), "login failed", err)
	}
	logging.FromContext(ctx).Debug().Str("host", c.cfg.Host).Msg("controller session established")
	return nil
}

// Filter returns the current MAC filter membership for the named network.
func (c *Client) Filter(ctx context.Context, network string) ([]mac.Address, error) {
	conf, err := c.wlan(ctx, network)
	if err != nil {
		return nil, err
	}

	members := make([]mac.Address, 0, len(conf.MACFilterList))
	for _, raw := range conf.MACFilterList {
		addr, err := mac.Parse(raw)
		if err != nil {
			return nil, errors.NewControllerError("get filter", network, 0,
				"controller returned unparsable MAC "+raw, err)
		}
		members = append(members, addr)
	}
	return members, nil
}

// SetFilter overwrites the MAC filter membership for the named network.
func (c *Client) SetFilter(ctx context.Context, network string, members []mac.Address) error {
	id, err := c.wlanID(ctx, network)
	if err != nil {
		return err
	}

	params := map[string]any{"mac_filter_list": mac.Strings(members)}
	if err := c.updateWLAN(ctx, id, params); err != nil {
		return errors.NewControllerError("set filter", network, statusCode(err), "update failed", err)
	}
	logging.FromContext(ctx).Info().
		Str("network", network).
		Int("members", len(members)).
		Msg("controller filter updated")
	return nil
}

// SetFilterEnabled activates or deactivates MAC filtering for the network.
func (c *Client) SetFilterEnabled(ctx context.Context, network string, enabled bool) error {
	id, err := c.wlanID(ctx, network)
	if err != nil {
		return err
	}
	if err := c.updateWLAN(ctx, id, map[string]any{"mac_filter_enabled": enabled}); err != nil {
		return errors.NewControllerError("set filter enabled", network, statusCode(err), "update failed", err)
	}
	return nil
}

// SetFilterPolicy switches the filter between allow and deny mode.
func (c *Client) SetFilterPolicy(ctx context.Context, network string, policy FilterPolicy) error {
	if policy != PolicyAllow && policy != PolicyDeny {
		return errors.NewConfigError("policy", `must be "allow" or "deny"`, nil)
	}
	id, err := c.wlanID(ctx, network)
	if err != nil {
		return err
	}
	if err := c.updateWLAN(ctx, id, map[string]any{"mac_filter_policy": string(policy)}); err != nil {
		return errors.NewControllerError("set filter policy", network, statusCode(err), "update failed", err)
	}
	return nil
}

// Networks returns the SSID names of all configured WLANs.
func (c *Client) Networks(ctx context.Context) ([]string, error) {
	confs, err := c.wlanConfs(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(confs))
	for _, conf := range confs {
		names = append(names, conf.Name)
	}
	return names, nil
}

// wlanID resolves the controller-internal WLAN id for an SSID name.
// Resolved ids are cached for the lifetime of the client.
func (c *Client) wlanID(ctx context.Context, network string) (string, error) {
	if id, ok := c.wlanIDs[network]; ok {
		return id, nil
	}

	confs, err := c.wlanConfs(ctx)
	if err != nil {
		return "", err
	}
	for _, conf := range confs {
		if conf.Name == network {
			c.wlanIDs[network] = conf.ID
			return conf.ID, nil
		}
	}
	return "", errors.NewControllerError("resolve network", network, 0,
		"no WiFi with that SSID on the controller", errors.ErrNetworkNotFound)
}

// wlan fetches the full configuration of one WLAN by SSID.
func (c *Client) wlan(ctx context.Context, network string) (*wlanConf, error) {
	id, err := c.wlanID(ctx, network)
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, http.MethodGet, c.sitePath("rest/wlanconf/"+id), nil)
	if err != nil {
		return nil, errors.NewControllerError("get filter", network, statusCode(err), "fetch failed", err)
	}

	// The endpoint returns a single-element list.
	var confs []wlanConf
	if err := json.Unmarshal(data, &confs); err != nil {
		return nil, errors.NewControllerError("get filter", network, 0, "decoding wlanconf", err)
	}
	if len(confs) == 0 {
		return nil, errors.NewControllerError("get filter", network, 0,
			"controller returned no wlanconf", errors.ErrNetworkNotFound)
	}
	return &confs[0], nil
}

func (c *Client) wlanConfs(ctx context.Context) ([]wlanConf, error) {
	data, err := c.do(ctx, http.MethodGet, c.sitePath("rest/wlanconf"), nil)
	if err != nil {
		return nil, errors.NewControllerError("list networks", "", statusCode(err), "fetch failed", err)
	}
	var confs []wlanConf
	if err := json.Unmarshal(data, &confs); err != nil {
		return nil, errors.NewControllerError("list networks", "", 0, "decoding wlanconf", err)
	}
	return confs, nil
}

func (c *Client) updateWLAN(ctx context.Context, id string, params map[string]any) error {
	_, err := c.do(ctx, http.MethodPut, c.sitePath("rest/wlanconf/"+id), params)
	return err
}

func (c *Client) sitePath(suffix string) string {
	return "/api/s/" + c.cfg.Site + "/" + suffix
}

// httpError carries a non-2xx controller response status.
type httpError struct {
	status int
	body   string
}

func (e *httpError) Error() string {
	return "unexpected status " + http.StatusText(e.status) + ": " + e.body
}

func statusCode(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	return 0
}

// do performs one API request, logging in first (or again) when the
// session is missing or expired. It returns the envelope's data payload.
func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	data, err := c.doOnce(ctx, method, path, body)
	if err == nil || path == "/api/login" {
		return data, err
	}

	if status := statusCode(err); status == http.StatusUnauthorized {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		return c.doOnce(ctx, method, path, body)
	}
	return data, err
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.cfg.Host, "/")+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", "controller response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &httpError{status: resp.StatusCode, body: strings.TrimSpace(string(raw))}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Meta.RC != "" && env.Meta.RC != "ok" {
		return nil, errors.New("controller rc " + env.Meta.RC + ": " + env.Meta.Message)
	}
	return env.Data, nil
}
