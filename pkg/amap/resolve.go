package amap

import "context"

// Resolver turns a [Center] into a concrete position. A nil position with a
// nil error means no match; callers keep their current position.
type Resolver interface {
	Resolve(ctx context.Context, engine *Engine, center Center) (*LngLat, error)
}

// ResolverFunc adapts a function to the [Resolver] interface.
type ResolverFunc func(ctx context.Context, engine *Engine, center Center) (*LngLat, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, engine *Engine, center Center) (*LngLat, error) {
	return f(ctx, engine, center)
}

// DefaultResolver resolves with [ResolvePosition].
var DefaultResolver Resolver = ResolverFunc(ResolvePosition)

// ResolvePosition returns concrete coordinates unchanged and geocodes a
// [Place] with the engine, taking the first match. It does not retry.
func ResolvePosition(ctx context.Context, engine *Engine, center Center) (*LngLat, error) {
	switch c := center.(type) {
	case nil:
		return nil, nil
	case LngLat:
		return &c, nil
	case *LngLat:
		return c, nil
	case Place:
		results, err := engine.Geocode(ctx, string(c))
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, nil
		}
		position := results[0].Position
		return &position, nil
	default:
		return nil, nil
	}
}
