// Package onos is a small client for the ONOS controller REST API.
package onos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/smazurov/sdnbridge/internal/version"
	"github.com/tidwall/gjson"
)

// Connection defaults of a stock ONOS install.
const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 8181
	DefaultUsername = "onos"
	DefaultPassword = "rocks"
	DefaultTimeout  = 5 * time.Second
	DefaultRetries  = 2
)

// Config holds the controller connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration // per attempt
	Retries  int
}

// StatusError is returned for responses with an unexpected status code.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("onos %s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client is an HTTP client for the ONOS REST API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *retryablehttp.Client
	logger     *slog.Logger
}

// NewClient creates a client. Zero fields in cfg take the package defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Username == "" {
		cfg.Username = DefaultUsername
		cfg.Password = DefaultPassword
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Retries
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.Logger = logger
	// Return the last response instead of a generic "giving up" error.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d/onos/v1", cfg.Host, cfg.Port),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: rc,
		logger:     logger,
	}
}

// BaseURL returns the REST root, e.g. http://127.0.0.1:8181/onos/v1.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// withBaseURL points the client at a test server.
func (c *Client) withBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// do sends one request and returns the body and response headers when the
// status is one of want.
func (c *Client) do(ctx context.Context, method, p string, body []byte, want ...int) ([]byte, http.Header, error) {
	var raw any
	if body != nil {
		raw = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+p, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("onos %s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	for _, code := range want {
		if resp.StatusCode == code {
			return data, resp.Header, nil
		}
	}
	return nil, nil, &StatusError{
		Method: method,
		Path:   p,
		Code:   resp.StatusCode,
		Body:   string(bytes.TrimSpace(data)),
	}
}

func (c *Client) get(ctx context.Context, p string) (gjson.Result, error) {
	data, _, err := c.do(ctx, http.MethodGet, p, nil, http.StatusOK)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("onos GET %s: invalid JSON response", p)
	}
	return gjson.ParseBytes(data), nil
}

// Ping checks that the controller answers with valid credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/devices")
	return err
}

// Device is a switch known to the controller.
type Device struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Available bool   `json:"available"`
}

// Devices lists the switches.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	res, err := c.get(ctx, "/devices")
	if err != nil {
		return nil, err
	}
	var devices []Device
	res.Get("devices").ForEach(func(_, d gjson.Result) bool {
		devices = append(devices, Device{
			ID:        d.Get("id").String(),
			Type:      d.Get("type").String(),
			Available: d.Get("available").Bool(),
		})
		return true
	})
	return devices, nil
}

// Location is a host's attachment point.
type Location struct {
	ElementID string `json:"element_id"`
	Port      string `json:"port"`
}

// Host is an end host discovered by the controller.
type Host struct {
	ID          string     `json:"id"`
	IPAddresses []string   `json:"ip_addresses"`
	Locations   []Location `json:"locations"`
}

// Hosts lists discovered hosts.
func (c *Client) Hosts(ctx context.Context) ([]Host, error) {
	res, err := c.get(ctx, "/hosts")
	if err != nil {
		return nil, err
	}
	var hosts []Host
	res.Get("hosts").ForEach(func(_, h gjson.Result) bool {
		host := Host{ID: h.Get("id").String()}
		for _, ip := range h.Get("ipAddresses").Array() {
			host.IPAddresses = append(host.IPAddresses, ip.String())
		}
		for _, loc := range h.Get("locations").Array() {
			host.Locations = append(host.Locations, Location{
				ElementID: loc.Get("elementId").String(),
				Port:      loc.Get("port").String(),
			})
		}
		hosts = append(hosts, host)
		return true
	})
	return hosts, nil
}

// Link is a discovered infrastructure link.
type Link struct {
	SrcDevice string `json:"src_device"`
	SrcPort   string `json:"src_port"`
	DstDevice string `json:"dst_device"`
	DstPort   string `json:"dst_port"`
}

// Links lists discovered links between switches.
func (c *Client) Links(ctx context.Context) ([]Link, error) {
	res, err := c.get(ctx, "/links")
	if err != nil {
		return nil, err
	}
	var links []Link
	res.Get("links").ForEach(func(_, l gjson.Result) bool {
		links = append(links, Link{
			SrcDevice: l.Get("src.device").String(),
			SrcPort:   l.Get("src.port").String(),
			DstDevice: l.Get("dst.device").String(),
			DstPort:   l.Get("dst.port").String(),
		})
		return true
	})
	return links, nil
}

// ActiveApplications returns the names of applications in state ACTIVE.
func (c *Client) ActiveApplications(ctx context.Context) (map[string]bool, error) {
	res, err := c.get(ctx, "/applications")
	if err != nil {
		return nil, err
	}
	active := make(map[string]bool)
	for _, name := range res.Get(`applications.#(state=="ACTIVE")#.name`).Array() {
		active[name.String()] = true
	}
	return active, nil
}

// FlowEntry is an installed flow rule.
type FlowEntry struct {
	ID       string `json:"id"`
	DeviceID string `json:"device_id"`
	State    string `json:"state"`
	Priority int    `json:"priority"`
	AppID    string `json:"app_id"`
	InPort   string `json:"in_port,omitempty"`
}

// Flows lists the flow rules of one device, or of every device when
// deviceID is empty.
func (c *Client) Flows(ctx context.Context, deviceID string) ([]FlowEntry, error) {
	p := "/flows"
	if deviceID != "" {
		p += "/" + url.PathEscape(deviceID)
	}
	res, err := c.get(ctx, p)
	if err != nil {
		return nil, err
	}
	var flows []FlowEntry
	res.Get("flows").ForEach(func(_, f gjson.Result) bool {
		flows = append(flows, FlowEntry{
			ID:       f.Get("id").String(),
			DeviceID: f.Get("deviceId").String(),
			State:    f.Get("state").String(),
			Priority: int(f.Get("priority").Int()),
			AppID:    f.Get("appId").String(),
			InPort:   f.Get(`selector.criteria.#(type=="IN_PORT").port`).String(),
		})
		return true
	})
	return flows, nil
}

// FlowIDs returns the ids of the device's flows accepted by match.
func (c *Client) FlowIDs(ctx context.Context, deviceID string, match func(FlowEntry) bool) ([]string, error) {
	flows, err := c.Flows(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, f := range flows {
		if f.DeviceID != deviceID {
			continue
		}
		if match == nil || match(f) {
			ids = append(ids, f.ID)
		}
	}
	return ids, nil
}

// AddFlow installs a flow rule and returns its id.
func (c *Client) AddFlow(ctx context.Context, f Flow) (string, error) {
	body, err := f.JSON()
	if err != nil {
		return "", err
	}
	p := "/flows/" + url.PathEscape(f.DeviceID)
	_, header, err := c.do(ctx, http.MethodPost, p, body, http.StatusCreated)
	if err != nil {
		return "", err
	}

	id := path.Base(header.Get("Location"))
	if id == "" || id == "." || id == "/" {
		return "", errors.New("onos did not return a flow location")
	}
	c.logger.Debug("Flow installed", "device", f.DeviceID, "flow_id", id, "priority", f.Priority)
	return id, nil
}

// DeleteFlow removes one flow rule. Deleting a flow that no longer exists
// is not an error.
func (c *Client) DeleteFlow(ctx context.Context, deviceID, flowID string) error {
	p := "/flows/" + url.PathEscape(deviceID) + "/" + url.PathEscape(flowID)
	_, _, err := c.do(ctx, http.MethodDelete, p, nil, http.StatusNoContent, http.StatusOK, http.StatusNotFound)
	if err != nil {
		return err
	}
	c.logger.Debug("Flow removed", "device", deviceID, "flow_id", flowID)
	return nil
}
