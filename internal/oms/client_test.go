package oms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFillMetadata_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fills" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("filter[fill_number][EQ]") != "11316" {
			t.Errorf("unexpected fill filter: %s", q.Get("filter[fill_number][EQ]"))
		}
		if q.Get("fields[fills]") != "bunches_colliding,fill_type_runtime,energy,start_time" {
			t.Errorf("unexpected attribute set: %s", q.Get("fields[fills]"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{
					"attributes": map[string]interface{}{
						"bunches_colliding": 2400,
						"fill_type_runtime": "PROTONS",
						"start_time":        "2024-05-01T10:00:00Z",
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	meta, err := c.FillMetadata(context.Background(), 11316)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Bunches != 2400 {
		t.Errorf("expected 2400 bunches, got %d", meta.Bunches)
	}
	if meta.System != "pp" {
		t.Errorf("expected pp, got %s", meta.System)
	}
	if meta.Type != "PROTONS" {
		t.Errorf("expected PROTONS, got %s", meta.Type)
	}
	if meta.Year != "2024" {
		t.Errorf("expected 2024, got %s", meta.Year)
	}
}

func TestFillMetadata_NoEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.FillMetadata(context.Background(), 229854)
	if err == nil {
		t.Fatal("expected error for missing entry")
	}
	if !strings.Contains(err.Error(), "229854") {
		t.Errorf("error should name the fill: %v", err)
	}
}

func TestFillMetadata_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.FillMetadata(context.Background(), 1); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestFillMetadata_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if _, err := c.FillMetadata(context.Background(), 1); err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestFillMetadata_Unreachable(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if _, err := c.FillMetadata(context.Background(), 1); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestFillMetadata_BearerToken(t *testing.T) {
	var tokenCalls int
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("unexpected grant type: %s", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("client_id") != "fillshot" {
			t.Errorf("unexpected client id: %s", r.PostForm.Get("client_id"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer auth.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected auth header: %s", got)
		}
		w.Write([]byte(`{"data":[{"attributes":{"bunches_colliding":1,"fill_type_runtime":"PROTONS","start_time":"2024-01-01"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:      srv.URL,
		TokenURL:     auth.URL,
		ClientID:     "fillshot",
		ClientSecret: "secret",
	})

	for i := 0; i < 3; i++ {
		if _, err := c.FillMetadata(context.Background(), 100+i); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if tokenCalls != 1 {
		t.Errorf("expected cached token after first fetch, got %d token calls", tokenCalls)
	}
}

func TestFillMetadata_TokenFailure(t *testing.T) {
	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer auth.Close()

	c := NewClient(Config{
		BaseURL:      "http://example.invalid",
		TokenURL:     auth.URL,
		ClientID:     "fillshot",
		ClientSecret: "wrong",
	})
	_, err := c.FillMetadata(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error for auth failure")
	}
	if !strings.Contains(err.Error(), "token") {
		t.Errorf("error should mention the token fetch: %v", err)
	}
}

func TestDeriveMetadata_SystemHeuristic(t *testing.T) {
	cases := []struct {
		fillType string
		want     string
	}{
		{"PROTONS", "pp"},
		{"IONS", "PbPb"},
		{"PbPb ref", "PbPb"},
		{"", "pp"},
		{"COSMICS", "pp"},
	}
	for _, tc := range cases {
		m := deriveMetadata(nil, tc.fillType, "")
		if m.System != tc.want {
			t.Errorf("deriveMetadata(%q): expected system %s, got %s", tc.fillType, tc.want, m.System)
		}
	}
}

func TestDeriveMetadata_Sentinels(t *testing.T) {
	m := deriveMetadata(nil, "", "")
	if m.Bunches != 0 {
		t.Errorf("expected 0 bunches, got %d", m.Bunches)
	}
	if m.Type != "UNKNOWN" || m.Year != "UNKNOWN" {
		t.Errorf("expected UNKNOWN sentinels, got type=%s year=%s", m.Type, m.Year)
	}
}

func TestMetadata_Label(t *testing.T) {
	m := &Metadata{Bunches: 2400, System: "pp", Year: "2024"}
	if m.Label() != "[2024 pp 2400b]" {
		t.Errorf("unexpected label: %s", m.Label())
	}
}
