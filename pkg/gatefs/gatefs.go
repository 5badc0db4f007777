// Package gatefs mediates file I/O through a single choke point. Every
// operation passes an access gate that confines paths to an approved
// root, a FIFO concurrency limiter that bounds in-flight file-system
// work, and a retry engine that backs off transient descriptor
// exhaustion. Callers see the same results and errors the underlying OS
// primitives produce; the layer only adds confinement, queueing, and
// recovery.
package gatefs

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gatefs/gatefs/pkg/gatefs/filesystem"
	"github.com/gatefs/gatefs/pkg/gatefs/pathgate"
	"github.com/gatefs/gatefs/pkg/gatefs/throttle"
)

// Mediator is the single entry point for mediated file I/O. It is safe
// for concurrent use.
type Mediator struct {
	gate     pathgate.Gate
	fsys     filesystem.FileSystem
	throttle *throttle.Manager
}

// Option customizes a Mediator.
type Option func(*options)

type options struct {
	gate   pathgate.Gate
	fsys   filesystem.FileSystem
	cfg    throttle.Config
	logger *zerolog.Logger
}

// WithGate replaces the default path resolver with a caller-supplied gate.
func WithGate(g pathgate.Gate) Option {
	return func(o *options) { o.gate = g }
}

// WithFileSystem replaces the OS-backed filesystem. Mostly useful for
// fault injection in tests.
func WithFileSystem(fsys filesystem.FileSystem) Option {
	return func(o *options) { o.fsys = fsys }
}

// WithConfig sets the initial throttle config instead of the defaults.
func WithConfig(cfg throttle.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// New creates a mediator confined to root.
func New(root string, opts ...Option) (*Mediator, error) {
	o := &options{cfg: throttle.DefaultConfig()}
	for _, opt := range opts {
		opt(o)
	}

	if o.gate == nil {
		resolver, err := pathgate.NewResolver(root)
		if err != nil {
			return nil, err
		}
		o.gate = resolver
		if o.fsys == nil {
			o.fsys = filesystem.NewOSFileSystem(resolver.Root())
		}
	}
	if o.fsys == nil {
		o.fsys = filesystem.NewOSFileSystem(root)
	}

	manager, err := throttle.NewManager(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("gatefs: %w", err)
	}

	logger := DefaultLogger()
	if o.logger != nil {
		logger = *o.logger
	}
	manager.Bus().Subscribe(throttle.NewLogNotifier(logger))

	return &Mediator{
		gate:     o.gate,
		fsys:     o.fsys,
		throttle: manager,
	}, nil
}

// Configure merges the set fields of p into the live throttle config.
// Changing MaxConcurrency fails with *throttle.ReconfigError while any
// operation is executing or queued.
func (m *Mediator) Configure(p throttle.Partial) error {
	return m.throttle.Configure(p)
}

// Config returns a copy of the live throttle config.
func (m *Mediator) Config() throttle.Config {
	return m.throttle.Snapshot()
}

// ActiveCount returns the number of operations currently executing.
func (m *Mediator) ActiveCount() int {
	return m.throttle.Active()
}

// PendingCount returns the number of operations waiting for admission.
func (m *Mediator) PendingCount() int {
	return m.throttle.Pending()
}

// Notifications returns the retry notification bus so callers can
// attach their own observability sinks.
func (m *Mediator) Notifications() *throttle.Bus {
	return m.throttle.Bus()
}
