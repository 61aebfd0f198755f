// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type config struct {
	name       string
	logger     *zap.Logger
	plugins    []Plugin
	registerer prometheus.Registerer
}

// Option configures a fiber.
type Option func(*config)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPlugins appends plugins to the pipeline after the built-in ref, use,
// key and memo plugins.
func WithPlugins(plugins ...Plugin) Option {
	return func(c *config) { c.plugins = append(c.plugins, plugins...) }
}

// WithRegisterer registers the fiber's metrics with r.
// Without it no metrics are collected. Fibers registered with the same r
// and the same name share their collectors. If registration conflicts with
// another collector, the fiber logs a warning and runs without metrics.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *config) { c.registerer = r }
}

// WithName names the fiber in logs and in the "fiber" metric label.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

func newConfig(opts []Option) config {
	c := config{name: "fiber", logger: zap.NewNop()}
	for _, o := range opts {
		o(&c)
	}
	return c
}
