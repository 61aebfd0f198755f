// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package resource provides a fiber plugin that owns externally created
// resources, such as GPU buffers or pipelines, on behalf of generators.
//
// A generator yields [Create]; the plugin creates the resource on the first
// visit of that call site, hands the same resource back on later visits,
// re-creates it when its dependencies change, and releases it when the
// frame that owns it is disposed.
//
//	p := resource.New(resource.Config{})
//	tick := fiber.NewRoot(draw, fiber.WithPlugins(p))
//	defer p.Close()
package resource

import (
	"context"

	"go.uber.org/zap"

	"code.hybscloud.com/fiber"
	"code.hybscloud.com/fiber/handlecache"
)

type createOp[V any] struct {
	fiber.Phantom[V]
	site    string
	deps    []any
	create  func(context.Context) (V, error)
	release func(V)
}

func (o createOp[V]) CallSite() string    { return o.site }
func (o createOp[V]) dependencies() []any { return o.deps }

func (o createOp[V]) make(ctx context.Context) (any, func(any), error) {
	v, err := o.create(ctx)
	if err != nil {
		return nil, nil, err
	}
	free := func(x any) {
		if o.release != nil {
			o.release(x.(V))
		}
	}
	return v, free, nil
}

type request interface {
	fiber.Sited
	dependencies() []any
	make(ctx context.Context) (any, func(any), error)
}

// Create yields a request for a resource owned by this call site.
// create runs on the first visit and whenever deps differ from the previous
// visit (see [fiber.SameDeps]); release runs for the replaced resource and
// when the owning frame is disposed. release may be nil.
func Create[V any](create func(ctx context.Context) (V, error), release func(V), deps ...any) fiber.Gen[V] {
	if create == nil {
		panic(fiber.ErrNonGenerator)
	}
	return fiber.Perform(createOp[V]{
		site:    fiber.CallSite(1),
		deps:    deps,
		create:  create,
		release: release,
	})
}

// entry is one live resource.
type entry struct {
	deps  []any
	value any
	free  func(any)
}

// Config configures a Plugin.
type Config struct {
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Plugin interprets [Create] requests. Resources are grouped per frame in
// a handle cache whose handles are the frames themselves. The cache never
// evicts: a resource lives until its deps change or its frame is disposed.
type Plugin struct {
	cache *handlecache.Cache[*fiber.Frame, string, entry]
	log   *zap.Logger
}

// New returns a Plugin with an empty cache.
func New(cfg Config) *Plugin {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Plugin{
		cache: handlecache.New(handlecache.Config[*fiber.Frame, string, entry]{
			Capacity: handlecache.Unbounded,
			Release: func(_ *fiber.Frame, _ string, e entry) {
				e.free(e.value)
			},
			Logger: cfg.Logger,
		}),
		log: cfg.Logger,
	}
}

// Matches implements fiber.Plugin.
func (p *Plugin) Matches(op fiber.Operation) bool {
	_, ok := op.(request)
	return ok
}

// Exec implements fiber.Plugin.
func (p *Plugin) Exec(op fiber.Operation, t *fiber.Thread, f *fiber.Frame, plugins []fiber.Plugin) (fiber.Resumed, error) {
	return p.ExecContext(context.Background(), op, t, f, plugins)
}

// ExecContext implements fiber.ContextPlugin. create runs with ctx.
func (p *Plugin) ExecContext(ctx context.Context, op fiber.Operation, t *fiber.Thread, f *fiber.Frame, _ []fiber.Plugin) (fiber.Resumed, error) {
	req := op.(request)
	path := t.Path(req.CallSite())
	deps := req.dependencies()
	if e, ok := p.cache.Get(f, path); ok {
		if fiber.SameDeps(e.deps, deps) {
			return e.value, nil
		}
		p.cache.Remove(f, path)
		if ce := p.log.Check(zap.DebugLevel, "resource replaced"); ce != nil {
			ce.Write(zap.String("path", path))
		}
	}
	e, err := p.cache.GetOrCreate(f, path, func() (entry, error) {
		v, free, err := req.make(ctx)
		if err != nil {
			return entry{}, err
		}
		return entry{deps: deps, value: v, free: free}, nil
	})
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// Dispose implements fiber.Disposer. Every resource owned by f is released.
func (p *Plugin) Dispose(f *fiber.Frame) {
	p.cache.Release(f)
}

// Live returns the number of resources currently owned by f.
func (p *Plugin) Live(f *fiber.Frame) int { return p.cache.Len(f) }

// Close releases every resource still held, for every frame.
func (p *Plugin) Close() { p.cache.Close() }
