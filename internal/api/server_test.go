package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/sdnbridge/internal/api/models"
	"github.com/smazurov/sdnbridge/internal/events"
	"github.com/smazurov/sdnbridge/internal/logging"
)

type fakeLEDController struct{}

func (fakeLEDController) Set(string, bool, string) error { return nil }
func (fakeLEDController) Available() []string           { return []string{"status"} }

func newTestServer(t *testing.T, opts *Options) (*httptest.Server, *events.Bus) {
	t.Helper()
	if opts.EventBus == nil {
		opts.EventBus = events.New()
	}
	server := NewServer(opts)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = server.Stop()
	})
	return ts, opts.EventBus
}

func get(t *testing.T, url string, auth string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if auth != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(auth)))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealthAndVersion(t *testing.T) {
	ts, _ := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret"})

	resp := get(t, ts.URL+"/api/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
	if h := decode[models.HealthData](t, resp); h.Status != "ok" {
		t.Errorf("health = %+v", h)
	}

	resp = get(t, ts.URL+"/api/version", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("version status = %d, want 200", resp.StatusCode)
	}
	if v := decode[models.VersionData](t, resp); v.GoVersion == "" || v.Platform == "" {
		t.Errorf("version = %+v", v)
	}
}

func TestBasicAuth(t *testing.T) {
	ts, _ := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret"})

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong password", "admin:nope", http.StatusUnauthorized},
		{"no colon", "admin", http.StatusUnauthorized},
		{"valid", "admin:secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+"/api/state", tt.auth)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want == http.StatusUnauthorized && resp.Header.Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}

	t.Run("query parameter", func(t *testing.T) {
		q := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
		resp := get(t, ts.URL+"/api/state?auth="+q, "")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestStateFollowsBus(t *testing.T) {
	ts, bus := newTestServer(t, &Options{})

	state := decode[models.StateData](t, get(t, ts.URL+"/api/state", ""))
	if state.Ready {
		t.Fatal("state should not be ready before the first snapshot")
	}

	bus.Publish(events.StateChangedEvent{
		Target:    "both",
		LinkA:     false,
		LinkB:     true,
		Congested: true,
		LEDA:      "RED",
		LEDB:      "GREEN",
		LEDSwitch: "BLUE",
		Reason:    "toggle",
		Timestamp: "2025-01-27T10:30:00Z",
	})
	bus.Publish(events.TemperatureEvent{Celsius: 31.5, Level: "high", Timestamp: "2025-01-27T10:30:01Z"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		state = decode[models.StateData](t, get(t, ts.URL+"/api/state", ""))
		if state.Ready && state.Temperature != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("state not updated from bus: %+v", state)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if state.Target != "both" || state.Reason != "toggle" {
		t.Errorf("target/reason = %q/%q", state.Target, state.Reason)
	}
	if len(state.Links) != 2 {
		t.Fatalf("links = %+v", state.Links)
	}
	if state.Links[0].Connected || state.Links[0].LED != "RED" || state.Links[0].Host != "h1" {
		t.Errorf("link a = %+v", state.Links[0])
	}
	if !state.Links[1].Connected || state.Links[1].LED != "GREEN" {
		t.Errorf("link b = %+v", state.Links[1])
	}
	if !state.Switch.Congested || state.Switch.LED != "BLUE" {
		t.Errorf("switch = %+v", state.Switch)
	}
	if state.Temperature.Celsius != 31.5 || state.Temperature.Level != "high" {
		t.Errorf("temperature = %+v", state.Temperature)
	}
}

func TestLogsFilter(t *testing.T) {
	ts, _ := newTestServer(t, &Options{})

	buf := logging.GetBuffer()
	now := time.Now()
	buf.Write(logging.LogEntry{Timestamp: now, Level: "debug", Module: "apitest", Message: "one"})
	buf.Write(logging.LogEntry{Timestamp: now, Level: "warn", Module: "apitest", Message: "two"})
	buf.Write(logging.LogEntry{Timestamp: now, Level: "error", Module: "apitest", Message: "three"})

	tests := []struct {
		query string
		want  []string
	}{
		{"module=apitest", []string{"one", "two", "three"}},
		{"module=apitest&level=warn", []string{"two", "three"}},
		{"module=apitest&limit=1", []string{"three"}},
		{"module=missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := get(t, ts.URL+"/api/logs?"+tt.query, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			data := decode[models.LogsData](t, resp)
			if data.Count != len(tt.want) {
				t.Fatalf("count = %d, want %d (%+v)", data.Count, len(tt.want), data.Entries)
			}
			for i, msg := range tt.want {
				if data.Entries[i].Message != msg {
					t.Errorf("entry %d = %q, want %q", i, data.Entries[i].Message, msg)
				}
			}
		})
	}
}

func TestMetricsAndLEDRoutes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("sdnbridge_switch_congested 0\n"))
	})
	ts, _ := newTestServer(t, &Options{PrometheusHandler: metrics, LEDController: fakeLEDController{}})

	if resp := get(t, ts.URL+"/metrics", ""); resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", resp.StatusCode)
	}

	resp := get(t, ts.URL+"/api/leds/capabilities", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leds status = %d, want 200", resp.StatusCode)
	}
	var caps struct {
		AvailableTypes []string `json:"available_types"`
		StatusLED      string   `json:"status_led"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&caps); err != nil {
		t.Fatal(err)
	}
	if len(caps.AvailableTypes) != 1 || caps.StatusLED != "status" {
		t.Errorf("capabilities = %+v", caps)
	}
}

func TestNoWriteRoutes(t *testing.T) {
	ts, _ := newTestServer(t, &Options{})

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/state", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/state status = %d, want 405", resp.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t, &Options{})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/state", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != "GET, HEAD, OPTIONS" {
		t.Errorf("Allow-Methods = %q", got)
	}
}

func TestDashboardAtRoot(t *testing.T) {
	ts, _ := newTestServer(t, &Options{})

	resp := get(t, ts.URL+"/", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	missing := get(t, ts.URL+"/api/nope", "")
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("GET /api/nope status = %d, want 404", missing.StatusCode)
	}
}
