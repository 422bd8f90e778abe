package amap

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/go-drift/mapkit/pkg/platform"
)

const (
	// ChannelName is the method channel the native AMap plugin listens on.
	ChannelName = "drift/amap"

	// GeocoderPlugin is the engine plugin providing geocoding. It is added
	// to the load request whenever a map is centered on a [Place].
	GeocoderPlugin = "AMap.Geocoder"
)

var (
	// ErrMissingKey is returned when an engine load has no API key.
	ErrMissingKey = errors.New("amap: missing API key")

	// ErrNoGeocoder is returned by [Engine.Geocode] when the engine was
	// loaded without [GeocoderPlugin].
	ErrNoGeocoder = errors.New("amap: engine loaded without " + GeocoderPlugin)

	// ErrNoDispatcher is reported when a bootstrap step finishes but no UI
	// dispatcher is registered to resume it.
	ErrNoDispatcher = errors.New("amap: no UI dispatcher registered")
)

var engineChannel = platform.NewMethodChannel(ChannelName)

// LoadOptions selects an engine build: API key, engine version and plugins.
// Two loads with the same normalized options share one engine.
type LoadOptions struct {
	Key     string
	Version string
	Plugins []string
}

func (o LoadOptions) normalized() LoadOptions {
	plugins := lo.Uniq(lo.Compact(lo.Map(o.Plugins, func(p string, _ int) string {
		return strings.TrimSpace(p)
	})))
	slices.Sort(plugins)
	return LoadOptions{
		Key:     strings.TrimSpace(o.Key),
		Version: strings.TrimSpace(o.Version),
		Plugins: plugins,
	}
}

func (o LoadOptions) cacheKey() string {
	return o.Key + "|" + o.Version + "|" + strings.Join(o.Plugins, ",")
}

// Engine is a loaded AMap engine. It is shared by every map requesting the
// same [LoadOptions] and is immutable once loaded.
type Engine struct {
	Key     string
	Version string
	Plugins []string
	// SessionID identifies this engine instance to the native side.
	SessionID string

	channel *platform.MethodChannel
}

// HasPlugin reports whether the engine was loaded with plugin.
func (e *Engine) HasPlugin(plugin string) bool {
	return lo.Contains(e.Plugins, plugin)
}

// Geocode looks up address with the engine geocoder. A native "no_data"
// status yields no results and no error.
func (e *Engine) Geocode(ctx context.Context, address string) ([]GeocodeResult, error) {
	if !e.HasPlugin(GeocoderPlugin) {
		return nil, ErrNoGeocoder
	}
	if e.channel == nil {
		return nil, platform.ErrPlatformUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := e.channel.Invoke("geocode", map[string]any{
		"sessionId": e.SessionID,
		"address":   address,
	})
	if err != nil {
		return nil, fmt.Errorf("amap: geocode %q: %w", address, err)
	}

	m := platform.ParseMap(result)
	switch status := platform.ParseString(m["status"]); status {
	case "complete", "":
	case "no_data":
		return nil, nil
	default:
		return nil, fmt.Errorf("amap: geocode %q: %w", address,
			platform.NewChannelError(status, platform.ParseString(m["info"])))
	}

	raw, _ := m["geocodes"].([]any)
	results := make([]GeocodeResult, 0, len(raw))
	for _, item := range raw {
		entry := platform.ParseMap(item)
		position, ok := parseLngLat(entry["location"])
		if !ok {
			continue
		}
		results = append(results, GeocodeResult{
			Position:         position,
			FormattedAddress: platform.ParseString(entry["formattedAddress"]),
			Level:            platform.ParseString(entry["level"]),
		})
	}
	return results, nil
}

// EngineLoader loads the mapping engine. Implementations must be safe for
// concurrent use; Load is called from worker goroutines.
type EngineLoader interface {
	Load(ctx context.Context, opts LoadOptions) (*Engine, error)
}

// ChannelLoader loads engines through the native AMap plugin. Each distinct
// set of options is loaded at most once per loader; concurrent loads of the
// same options share a single native call.
type ChannelLoader struct {
	channel *platform.MethodChannel

	mu    sync.Mutex
	cache map[string]*Engine
	group singleflight.Group
}

// NewChannelLoader creates a loader with an empty cache.
func NewChannelLoader() *ChannelLoader {
	return &ChannelLoader{
		channel: engineChannel,
		cache:   make(map[string]*Engine),
	}
}

// DefaultLoader is the process-wide loader used by [Map] when none is set.
var DefaultLoader = NewChannelLoader()

// Load returns the cached engine for opts or loads it. A cancelled ctx
// abandons the wait but not a native load already in flight for other
// callers.
func (l *ChannelLoader) Load(ctx context.Context, opts LoadOptions) (*Engine, error) {
	opts = opts.normalized()
	if opts.Key == "" {
		return nil, ErrMissingKey
	}
	if err := CheckVersion(opts.Version); err != nil {
		return nil, err
	}

	key := opts.cacheKey()
	l.mu.Lock()
	engine, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		return engine, nil
	}

	ch := l.group.DoChan(key, func() (any, error) {
		return l.load(key, opts)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Engine), nil
	}
}

func (l *ChannelLoader) load(key string, opts LoadOptions) (*Engine, error) {
	sessionID := uuid.NewString()
	result, err := l.channel.Invoke("load", map[string]any{
		"key":       opts.Key,
		"version":   opts.Version,
		"plugins":   opts.Plugins,
		"sessionId": sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("amap: load engine %s: %w", opts.Version, err)
	}

	engine := &Engine{
		Key:       opts.Key,
		Version:   opts.Version,
		Plugins:   opts.Plugins,
		SessionID: sessionID,
		channel:   l.channel,
	}
	// Native may report the exact build it loaded.
	if loaded := platform.ParseString(platform.ParseMap(result)["version"]); loaded != "" {
		engine.Version = loaded
	}

	l.mu.Lock()
	l.cache[key] = engine
	l.mu.Unlock()
	return engine, nil
}

// Loaded returns the number of engines in the cache.
func (l *ChannelLoader) Loaded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}
