package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/runtime"
)

// Status represents the health status of a node
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusStopped   Status = "stopped"
	StatusMissing   Status = "missing"
	StatusUnknown   Status = "unknown"

	// ProbeTimeout bounds a single bee API probe.
	ProbeTimeout = 3 * time.Second

	// ProbeHost is where node API ports are published.
	ProbeHost = "127.0.0.1"
)

// Prober checks that a bee API answers on addr (host:port).
type Prober interface {
	Probe(ctx context.Context, addr string) error
}

// HTTPProber probes the bee API's /health endpoint.
type HTTPProber struct {
	Client *http.Client
}

// NewHTTPProber creates a prober bounded by ProbeTimeout.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{Client: &http.Client{Timeout: ProbeTimeout}}
}

func (p *HTTPProber) Probe(ctx context.Context, addr string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bee API returned %s", resp.Status)
	}
	return nil
}

// CheckResult contains the results of health checks
type CheckResult struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Status           Status `json:"status"`
	ContainerRunning bool   `json:"container_running"`
	APIReachable     bool   `json:"api_reachable"`
	Uptime           string `json:"uptime,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Check inspects a node's container and, when it runs, probes its bee API.
func Check(ctx context.Context, rt runtime.Runtime, p Prober, info *node.Info) *CheckResult {
	result := &CheckResult{ID: info.ID, Name: info.Name, Status: StatusUnknown}

	ci, err := rt.Status(ctx, info.Name)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	switch ci.Status {
	case runtime.StatusNotFound:
		result.Status = StatusMissing
		return result
	case runtime.StatusStopped:
		result.Status = StatusStopped
		return result
	case runtime.StatusRunning:
		result.ContainerRunning = true
	default:
		return result
	}

	result.Uptime = GetUptime(ci, time.Now())

	if err := p.Probe(ctx, net.JoinHostPort(ProbeHost, info.APIPort)); err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		return result
	}
	result.APIReachable = true
	result.Status = StatusHealthy
	return result
}

// GetUptime returns the container uptime in human-readable format.
func GetUptime(info *runtime.ContainerInfo, now time.Time) string {
	if info == nil {
		return "unknown"
	}

	since := info.StartedAt
	if since == "" || since == "n/a" {
		return "unknown"
	}

	var t time.Time
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
	}

	for _, format := range formats {
		if parsed, err := time.Parse(format, since); err == nil {
			t = parsed
			break
		}
	}

	if t.IsZero() {
		return since // Return raw value if can't parse
	}

	return formatDuration(now.Sub(t))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
