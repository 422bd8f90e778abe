package cmd

import (
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/mapkit/cmd/mapkit/internal/project"
	"github.com/go-drift/mapkit/pkg/amap"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Print the resolved AMap configuration",
		Long: `Print the AMap configuration maps in this project start from.

Values come from amap.yaml next to go.mod, overridden by AMAP_* environment
variables. The engine key is masked unless --show-key is given.`,
		Usage: "mapkit config [--show-key]",
		Run:   runConfig,
	})
}

func runConfig(args []string) error {
	showKey := false
	for _, arg := range args {
		switch arg {
		case "--show-key":
			showKey = true
		default:
			return fmt.Errorf("unknown flag: %s", arg)
		}
	}

	root, err := project.FindRoot(workDir)
	if err != nil {
		return err
	}
	resolved, err := project.Resolve(root)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := *resolved.Config
	if !showKey {
		cfg.Key = project.MaskKey(cfg.Key)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Project: %s (%s)\n", resolved.Name, resolved.ModulePath)
	fmt.Fprintf(stdout, "Config:  %s\n", configSource(resolved))
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, string(data))
	return nil
}

func configSource(resolved *project.Resolved) string {
	return filepath.Join(resolved.Root, amap.ConfigFile)
}
