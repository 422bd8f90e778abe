package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/mapkit/pkg/welcome"
)

// capture redirects command output for the duration of the test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevDir := stdout, workDir
	stdout = &buf
	t.Cleanup(func() {
		stdout = prevOut
		workDir = prevDir
	})
	return &buf
}

func TestExecute_Version(t *testing.T) {
	out := capture(t)
	if err := Execute([]string{"--version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "mapkit version "+Version) {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestExecute_Help(t *testing.T) {
	out := capture(t)
	if err := Execute(nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"config", "connect"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("help should list %q", name)
		}
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	capture(t)
	if err := Execute([]string{"deploy"}); err == nil {
		t.Error("expected an error")
	}
}

func TestConfig(t *testing.T) {
	out := capture(t)
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":    "module example.com/city-maps\n\ngo 1.24\n",
		"amap.yaml": "key: \"0123456789\"\nplugins: [AMap.Scale]\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := Execute([]string{"--dir", dir, "config"}); err != nil {
		t.Fatalf("config: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Project: city-maps (example.com/city-maps)",
		"******6789",
		"- AMap.Scale",
		"version: \"2.0\"",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "0123456789") {
		t.Error("key should be masked")
	}
}

func TestConfig_UnknownFlag(t *testing.T) {
	capture(t)
	if err := runConfig([]string{"--verbose"}); err == nil {
		t.Error("expected an error")
	}
}

func TestParseConnectArgs(t *testing.T) {
	opts, err := parseConnectArgs([]string{"--host", "db.local", "--port=3307", "--ssl", "required", "--endpoint", "http://api"})
	if err != nil {
		t.Fatal(err)
	}
	want := welcome.DefaultSettings()
	want.Host = "db.local"
	want.Port = 3307
	want.SSL = "required"
	if diff := cmp.Diff(want, opts.settings); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	if opts.endpoint != "http://api" {
		t.Errorf("unexpected endpoint %q", opts.endpoint)
	}

	for _, args := range [][]string{{"--port", "abc"}, {"--host"}, {"--color", "red"}} {
		if _, err := parseConnectArgs(args); err == nil {
			t.Errorf("parseConnectArgs(%v): expected an error", args)
		}
	}
}

func TestConnect(t *testing.T) {
	var got welcome.Settings
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		if got.Port == 3307 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code": 1045, "message": "access denied"}`))
		}
	}))
	defer server.Close()

	out := capture(t)
	if err := Execute([]string{"connect", "--endpoint", server.URL}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !strings.Contains(out.String(), "Connected.") {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := Execute([]string{"connect", "--endpoint", server.URL, "--port", "3307"}); err == nil {
		t.Error("expected an error")
	}
	if !strings.Contains(out.String(), "Failed: access denied") {
		t.Errorf("unexpected output %q", out.String())
	}
}
