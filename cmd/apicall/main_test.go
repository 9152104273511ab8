package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	core := []byte(`{"app_name":"apicall-test","debug_opts":{"quiet_api_calls":true}}`)
	if err := os.WriteFile(filepath.Join(root, "config", ".core.json"), core, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

func parse(t *testing.T, args ...string) config {
	t.Helper()
	fs := flag.NewFlagSet("apicall", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, err := parseConfig(fs, args)
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	return cfg
}

func TestParseConfig(t *testing.T) {
	cfg := parse(t, "-endpoint", "/users", "-success", "S", "-failure", "F", "-q", "page=2", "-q", "name=al")
	if cfg.Endpoint != "/users" || cfg.Method != "GET" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Query["page"] != "2" || cfg.Query["name"] != "al" {
		t.Fatalf("query = %v", cfg.Query)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := [][]string{
		{"-q", "novalue"},
		{"-body", "{}", "-body-file", "x.xlsx"},
	}
	for _, args := range tests {
		fs := flag.NewFlagSet("apicall", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		if _, err := parseConfig(fs, args); err == nil {
			t.Fatalf("parseConfig(%v) expected error", args)
		}
	}
}

func TestRun_Success(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[1,2]}`))
	}))
	defer srv.Close()

	cfg := parse(t, "-root", testRoot(t), "-host", srv.URL,
		"-endpoint", "/users/list", "-success", "USERS_SUCCESS", "-failure", "USERS_FAILURE",
		"-q", "page=2", "-toast", "Loaded")
	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if gotPath != "/api/users/list" || gotQuery != "page=2" {
		t.Fatalf("request = %s?%s", gotPath, gotQuery)
	}

	var o struct {
		Result map[string]any `json:"result"`
		State  struct {
			Toast     struct{ Message string } `json:"toast"`
			Responses map[string]any           `json:"responses"`
		} `json:"state"`
	}
	if err := json.Unmarshal(out.Bytes(), &o); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if _, ok := o.Result["items"]; !ok {
		t.Fatalf("result = %v", o.Result)
	}
	if o.State.Toast.Message != "Loaded" {
		t.Fatalf("toast = %+v", o.State.Toast)
	}
	if _, ok := o.State.Responses["USERS_SUCCESS"]; !ok {
		t.Fatalf("responses = %v", o.State.Responses)
	}
}

func TestRun_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"X"}`))
	}))
	defer srv.Close()

	cfg := parse(t, "-root", testRoot(t), "-host", srv.URL,
		"-endpoint", "/boom", "-success", "BOOM_SUCCESS", "-failure", "BOOM_FAILURE")
	var out bytes.Buffer
	err := run(context.Background(), cfg, &out)
	if err == nil || err.Error() != "X" {
		t.Fatalf("run() error = %v, want X", err)
	}
	var o struct {
		Error string `json:"error"`
		State struct {
			Error struct {
				Open    bool
				Message string
			} `json:"error"`
		} `json:"state"`
	}
	if err := json.Unmarshal(out.Bytes(), &o); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if o.Error != "X" || !o.State.Error.Open || o.State.Error.Message != "X" {
		t.Fatalf("output = %+v", o)
	}
}

func TestRun_InvalidDescriptor(t *testing.T) {
	cfg := parse(t, "-root", testRoot(t), "-endpoint", "/x", "-success", "SAME", "-failure", "SAME")
	if err := run(context.Background(), cfg, io.Discard); err == nil {
		t.Fatal("expected validation error")
	}
}
