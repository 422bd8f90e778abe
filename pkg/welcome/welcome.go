// Package welcome holds the connection state of the welcome screen: a pure
// reducer over [Model] and a [Client] that performs the connect call and
// dispatches its outcome.
package welcome

import (
	"log/slog"
	"sync/atomic"

	"github.com/go-drift/mapkit/pkg/core"
)

// SSL modes accepted by [Settings].
const (
	SSLDisabled = "disabled"
	SSLRequired = "required"
	SSLVerify   = "verify"
)

// Settings describe the database the welcome screen connects to.
type Settings struct {
	Host     string `json:"host" validate:"required,hostname|ip"`
	Port     int    `json:"port" validate:"required,min=1,max=65535"`
	User     string `json:"user" validate:"required"`
	Pass     string `json:"pass"`
	Database string `json:"database,omitempty"`
	SSL      string `json:"ssl" validate:"oneof=disabled required verify"`
}

// DefaultSettings returns the settings a fresh model starts with.
func DefaultSettings() Settings {
	return Settings{
		Host: "127.0.0.1",
		Port: 3306,
		User: "root",
		Pass: "root",
		SSL:  SSLDisabled,
	}
}

// ConnectError is the failure recorded by the last connect attempt.
type ConnectError struct {
	Code    string
	Message string
}

func (e *ConnectError) Error() string {
	if e.Code == "" {
		return "welcome: " + e.Message
	}
	return "welcome: " + e.Code + ": " + e.Message
}

// Model is the welcome screen's connection state.
type Model struct {
	Connected  bool
	Connecting bool
	Error      *ConnectError
	Settings   Settings
}

// NewModel returns the initial model.
func NewModel() Model {
	return Model{Settings: DefaultSettings()}
}

// Action is one of Connect, ConnectSuccess or ConnectFailure.
type Action interface {
	isAction()
}

// Connect marks the start of a connect attempt.
type Connect struct{}

// ConnectSuccess marks a successful connect attempt.
type ConnectSuccess struct{}

// ConnectFailure marks a failed connect attempt.
type ConnectFailure struct {
	Code    string
	Message string
}

func (Connect) isAction()        {}
func (ConnectSuccess) isAction() {}
func (ConnectFailure) isAction() {}

// Update returns the model after action. A nil or unknown action returns
// the model unchanged.
//
// A failure leaves Connected set; callers check Error before Connected.
func Update(model Model, action Action) Model {
	switch a := action.(type) {
	case Connect:
		trace("connecting database")
		model.Connected = false
		model.Connecting = true
	case ConnectSuccess:
		trace("connecting database succeeded")
		model.Connected = true
		model.Connecting = false
	case ConnectFailure:
		trace("connecting database failed", "code", a.Code)
		model.Connected = true
		model.Connecting = false
		model.Error = &ConnectError{Code: a.Code, Message: a.Message}
	}
	return model
}

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger for reducer traces. nil restores slog.Default.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

func trace(msg string, args ...any) {
	if core.DebugMode() {
		log().Info("welcome: "+msg, args...)
	}
}
