// Package project locates the Go module a mapkit command runs in and
// resolves its amap configuration.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/go-drift/mapkit/pkg/amap"
)

// Resolved contains the resolved project and its amap configuration.
type Resolved struct {
	Root       string
	ModulePath string
	Name       string
	Config     *amap.Config
}

// Resolve reads go.mod in dir and loads the amap configuration next to it.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := amap.LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Root:       dir,
		ModulePath: modulePath,
		Name:       defaultName(modulePath, dir),
		Config:     cfg,
	}, nil
}

// FindRoot walks up from start to find go.mod. An empty start means the
// current directory.
func FindRoot(start string) (string, error) {
	dir := start
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

// defaultName is the last module path element, without a major version
// suffix.
func defaultName(modulePath, dir string) string {
	name := filepath.Base(dir)
	if prefix, _, ok := module.SplitPathVersion(modulePath); ok {
		parts := strings.Split(prefix, "/")
		name = parts[len(parts)-1]
	}
	if name == "" {
		return "mapkit_app"
	}
	return name
}

// MaskKey hides all but the last four characters of an engine key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
