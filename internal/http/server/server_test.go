package server

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	memoryStorage "github.com/gofiber/storage/memory/v2"

	"github.com/treychaffin/TargetGenerator/internal/config"
)

func minimalConfig() config.Config {
	cfg := config.Default()
	cfg.RateLimiter.Interval = time.Hour
	cfg.RateLimiter.EnableUserLimiter = false
	return cfg
}

func TestNew_RoutesAndJSON404(t *testing.T) {
	app := New(Deps{Config: minimalConfig(), Store: memoryStorage.New()})

	reqForm, _ := http.NewRequest(http.MethodGet, "/", nil)
	respForm, err := app.Test(reqForm)
	if err != nil {
		t.Fatalf("form request failed: %v", err)
	}
	if respForm.StatusCode != http.StatusOK {
		t.Fatalf("expected / 200, got %d", respForm.StatusCode)
	}

	req404, _ := http.NewRequest(http.MethodGet, "/does-not-exist", nil)
	resp404, err := app.Test(req404)
	if err != nil {
		t.Fatalf("404 request failed: %v", err)
	}
	if resp404.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp404.StatusCode)
	}
	if got := resp404.Header.Get("Content-Type"); !strings.Contains(got, "json") {
		t.Fatalf("expected JSON error response content type, got %q", got)
	}
}

func TestNew_GenerateEndToEnd(t *testing.T) {
	app := New(Deps{Config: minimalConfig(), Store: memoryStorage.New()})

	body := strings.NewReader("distance=100&unit=yards&moa=0.25&paper=LETTER")
	req, _ := http.NewRequest(http.MethodPost, "/targets", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("generate request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	pdf, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(pdf), "%PDF-") {
		t.Fatalf("expected a PDF body")
	}
}

func TestNew_MonitorRoute(t *testing.T) {
	app := New(Deps{Config: minimalConfig(), Store: memoryStorage.New()})

	req, _ := http.NewRequest(http.MethodGet, "/ops/monitor", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("monitor request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected monitor 200, got %d", resp.StatusCode)
	}
}
