package welcome

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// collect returns a dispatch func and the actions it received.
func collect() (Dispatch, *[]Action) {
	var actions []Action
	return func(a Action) { actions = append(actions, a) }, &actions
}

func TestClient_ConnectSuccess(t *testing.T) {
	var got Settings
	var requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/connect" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		requestID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	dispatch, actions := collect()
	client := &Client{Endpoint: server.URL + "/", HTTP: server.Client()}
	if err := client.Connect(context.Background(), DefaultSettings(), dispatch); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if diff := cmp.Diff([]Action{Connect{}, ConnectSuccess{}}, *actions); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultSettings(), got); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Errorf("expected a uuid request id, got %q", requestID)
	}
}

func TestClient_ConnectFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   ConnectFailure
	}{
		{
			name:   "backend error",
			status: http.StatusUnauthorized,
			body:   `{"code": 1045, "message": "access denied"}`,
			want:   ConnectFailure{Code: "1045", Message: "access denied"},
		},
		{
			name:   "string code",
			status: http.StatusBadGateway,
			body:   `{"code": "ECONNREFUSED", "message": "connection refused"}`,
			want:   ConnectFailure{Code: "ECONNREFUSED", Message: "connection refused"},
		},
		{
			name:   "empty error body",
			status: http.StatusInternalServerError,
			want:   ConnectFailure{Code: "500", Message: "Internal Server Error"},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `not json`,
			want:   ConnectFailure{Code: CodeResponse},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			dispatch, actions := collect()
			err := NewClient(server.URL).Connect(context.Background(), DefaultSettings(), dispatch)

			var connErr *ConnectError
			if !stderrors.As(err, &connErr) || connErr.Code != tt.want.Code {
				t.Fatalf("expected ConnectError with code %q, got %v", tt.want.Code, err)
			}
			if len(*actions) != 2 {
				t.Fatalf("expected two actions, got %v", *actions)
			}
			failure, ok := (*actions)[1].(ConnectFailure)
			if !ok || failure.Code != tt.want.Code {
				t.Fatalf("expected ConnectFailure %q, got %#v", tt.want.Code, (*actions)[1])
			}
			if tt.want.Message != "" && failure.Message != tt.want.Message {
				t.Errorf("expected message %q, got %q", tt.want.Message, failure.Message)
			}
		})
	}
}

func TestClient_InvalidSettings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid settings must not reach the backend")
	}))
	defer server.Close()

	settings := DefaultSettings()
	settings.Port = 0
	settings.SSL = "sometimes"

	dispatch, actions := collect()
	err := NewClient(server.URL).Connect(context.Background(), settings, dispatch)

	var connErr *ConnectError
	if !stderrors.As(err, &connErr) || connErr.Code != CodeInvalidSettings {
		t.Fatalf("expected invalid settings, got %v", err)
	}
	model := NewModel()
	for _, a := range *actions {
		model = Update(model, a)
	}
	if model.Connecting || model.Error == nil || model.Error.Code != CodeInvalidSettings {
		t.Errorf("unexpected model %+v", model)
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	dispatch, actions := collect()
	err := NewClient(endpoint).Connect(context.Background(), DefaultSettings(), dispatch)

	var connErr *ConnectError
	if !stderrors.As(err, &connErr) || connErr.Code != CodeRequest {
		t.Fatalf("expected request failure, got %v", err)
	}
	if got := len(*actions); got != 2 {
		t.Errorf("expected Connect and ConnectFailure, got %d actions", got)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("cancelled request must not reach the backend")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dispatch, _ := collect()
	if err := NewClient(server.URL).Connect(ctx, DefaultSettings(), dispatch); err == nil {
		t.Error("expected an error")
	}
}
