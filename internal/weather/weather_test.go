package weather

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const samplePayload = `{
  "forecast": {
    "day": [
      {"local_date_time": "2024-03-10T00:00:00+01:00", "TX_C": 12.5, "TN_C": 3.0, "SYMBOL_CODE": 2, "RRR_MM": 0.4, "PROBPCP_PERCENT": 20},
      {"local_date_time": "2024-03-11T00:00:00+01:00", "TX_C": 14, "TN_C": 5, "SYMBOL_CODE": 1, "RRR_MM": 0, "PROBPCP_PERCENT": 5},
      {"local_date_time": "2024-03-12T00:00:00+01:00", "TX_C": 9, "TN_C": 2, "SYMBOL_CODE": 8, "RRR_MM": 3.2, "PROBPCP_PERCENT": 80}
    ]
  }
}`

func TestClientFetch(t *testing.T) {
	var gotBasic, gotBearer string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		gotBasic = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "tok123"}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		gotBearer = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient("id", "secret", 2)
	c.TokenURL = srv.URL + "/token"
	c.ForecastURL = srv.URL + "/forecast"

	days, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	wantBasic := "Basic " + base64.StdEncoding.EncodeToString([]byte("id:secret"))
	if gotBasic != wantBasic {
		t.Fatalf("basic auth mismatch: %q", gotBasic)
	}
	if gotBearer != "Bearer tok123" {
		t.Fatalf("bearer mismatch: %q", gotBearer)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	first := days[0]
	if first.Day != "Sun" {
		t.Fatalf("weekday mismatch: %q", first.Day)
	}
	if first.MaxTemp != "12.5" || first.MinTemp != "3.0" {
		t.Fatalf("temps mismatch: %+v", first)
	}
	if first.Rain != "0.4 mm" || first.RainProbability != "20%" {
		t.Fatalf("rain fields mismatch: %+v", first)
	}
	if first.IconID != "2" {
		t.Fatalf("icon mismatch: %q", first.IconID)
	}
}

func TestClientFetchTokenFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("id", "secret", 6)
	c.TokenURL = srv.URL
	c.ForecastURL = srv.URL

	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error on token failure")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.json")
	if err := os.WriteFile(path, []byte(samplePayload), 0o600); err != nil {
		t.Fatalf("write mock: %v", err)
	}

	fs := NewFileSource(path, 6)
	days, err := fs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// Fewer entries than requested days: return what exists, no padding.
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[2].Rain != "3.2 mm" {
		t.Fatalf("third day mismatch: %+v", days[2])
	}
}

func TestFileSourceMissing(t *testing.T) {
	fs := NewFileSource(filepath.Join(t.TempDir(), "absent.json"), 6)
	if _, err := fs.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for missing mock file")
	}
}
