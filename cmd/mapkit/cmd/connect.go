package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/go-drift/mapkit/pkg/welcome"
)

func init() {
	RegisterCommand(&Command{
		Name:  "connect",
		Short: "Check the welcome backend",
		Long: `Send connection settings to the welcome backend once and report the
resulting state. Settings default to the welcome screen's defaults.

Flags:
  --endpoint URL     Backend base URL (default: http://localhost)
  --host HOST        Database host
  --port PORT        Database port
  --user USER        Database user
  --pass PASS        Database password
  --database NAME    Database name
  --ssl MODE         disabled, required or verify`,
		Usage: "mapkit connect [flags]",
		Run:   runConnect,
	})
}

type connectOptions struct {
	endpoint string
	settings welcome.Settings
}

func parseConnectArgs(args []string) (connectOptions, error) {
	opts := connectOptions{
		endpoint: welcome.DefaultEndpoint,
		settings: welcome.DefaultSettings(),
	}
	for i := 0; i < len(args); i++ {
		name, value, inline := strings.Cut(args[i], "=")
		if !inline {
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		switch name {
		case "--endpoint":
			opts.endpoint = value
		case "--host":
			opts.settings.Host = value
		case "--port":
			port, err := strconv.Atoi(value)
			if err != nil {
				return opts, fmt.Errorf("invalid port %q", value)
			}
			opts.settings.Port = port
		case "--user":
			opts.settings.User = value
		case "--pass":
			opts.settings.Pass = value
		case "--database":
			opts.settings.Database = value
		case "--ssl":
			opts.settings.SSL = value
		default:
			return opts, fmt.Errorf("unknown flag: %s", name)
		}
	}
	return opts, nil
}

func runConnect(args []string) error {
	opts, err := parseConnectArgs(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	model := welcome.NewModel()
	model.Settings = opts.settings
	dispatch := func(action welcome.Action) {
		model = welcome.Update(model, action)
	}

	fmt.Fprintf(stdout, "Connecting to %s:%d via %s...\n", opts.settings.Host, opts.settings.Port, opts.endpoint)
	connectErr := welcome.NewClient(opts.endpoint).Connect(ctx, opts.settings, dispatch)
	if model.Error != nil {
		fmt.Fprintf(stdout, "Failed: %s\n", model.Error.Message)
		return connectErr
	}
	fmt.Fprintln(stdout, "Connected.")
	return nil
}
