package welcome

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	// DefaultEndpoint is the backend the client talks to when none is set.
	DefaultEndpoint = "http://localhost"

	connectPath     = "/api/v1/connect"
	requestIDHeader = "X-Request-ID"
)

// Failure codes dispatched by the client itself, as opposed to codes
// returned by the backend.
const (
	CodeInvalidSettings = "INVALID_SETTINGS"
	CodeRequest         = "REQUEST_FAILED"
	CodeResponse        = "BAD_RESPONSE"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings before they are sent.
func (s Settings) Validate() error {
	return validate.Struct(s)
}

// Dispatch receives the actions produced by a connect attempt.
type Dispatch func(Action)

// Client performs the connect call.
type Client struct {
	Endpoint string
	HTTP     *http.Client
}

// NewClient returns a client for endpoint using http.DefaultClient.
func NewClient(endpoint string) *Client {
	return &Client{Endpoint: endpoint, HTTP: http.DefaultClient}
}

// Connect dispatches Connect, sends settings to the backend and dispatches
// ConnectSuccess or ConnectFailure. It does not retry. The returned error
// matches the failure dispatched, if any.
func (c *Client) Connect(ctx context.Context, settings Settings, dispatch Dispatch) error {
	dispatch(Connect{})

	err := c.connect(ctx, settings)
	if err == nil {
		dispatch(ConnectSuccess{})
		return nil
	}
	var connErr *ConnectError
	if !errors.As(err, &connErr) {
		connErr = &ConnectError{Code: CodeRequest, Message: err.Error()}
	}
	dispatch(ConnectFailure{Code: connErr.Code, Message: connErr.Message})
	return connErr
}

// connectResponse is the backend's reply. Code and Message are set on
// failure.
type connectResponse struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) connect(ctx context.Context, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return &ConnectError{Code: CodeInvalidSettings, Message: err.Error()}
	}

	body, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	endpoint := strings.TrimSuffix(c.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+connectPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	log().Debug("welcome: connect", "host", settings.Host, "port", settings.Port, "request_id", requestID)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var reply connectResponse
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &reply); err != nil {
			return &ConnectError{Code: CodeResponse, Message: fmt.Sprintf("failed to parse response: %v", err)}
		}
	}
	if resp.StatusCode >= 400 {
		code := codeString(reply.Code)
		if code == "" {
			code = strconv.Itoa(resp.StatusCode)
		}
		message := reply.Message
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		log().Debug("welcome: connect failed", "status", resp.StatusCode, "code", code, "request_id", requestID)
		return &ConnectError{Code: code, Message: message}
	}
	return nil
}

// codeString accepts the backend's code as a string or a number.
func codeString(v any) string {
	switch code := v.(type) {
	case string:
		return code
	case float64:
		return strconv.FormatFloat(code, 'f', -1, 64)
	default:
		return ""
	}
}
