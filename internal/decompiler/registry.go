package decompiler

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Iron-Ham/smali2java/internal/errors"
)

// specs lists every backend this build can drive.
var specs = map[BackendName]ToolSpec{
	BackendJadx: JadxSpec,
}

// Names returns the supported backend names in sorted order.
func Names() []BackendName {
	names := make([]BackendName, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IsKnown reports whether name is a supported backend.
func IsKnown(name string) bool {
	_, ok := specs[BackendName(name)]
	return ok
}

// Registry maps backend names to backend instances for one output root.
// Backends are built on first use and reused for the registry's lifetime.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	root     string
	opts     options
	backends map[BackendName]Backend
}

// NewRegistry creates a Registry whose backends write under outputRoot.
func NewRegistry(outputRoot string, opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		root:     outputRoot,
		opts:     o,
		backends: make(map[BackendName]Backend),
	}
}

// Get returns the backend for name. The set of names is fixed at build time,
// so an unknown name is a programming error and panics. Use Lookup for names
// that come from user input.
func (r *Registry) Get(name BackendName) Backend {
	b, err := r.Lookup(string(name))
	if err != nil {
		panic(err)
	}
	return b
}

// Lookup returns the backend for name, or an error wrapping
// errors.ErrUnknownBackend.
func (r *Registry) Lookup(name string) (Backend, error) {
	key := BackendName(strings.ToLower(strings.TrimSpace(name)))
	spec, ok := specs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", errors.ErrUnknownBackend, name, joinNames(Names()))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.backends[key]; ok {
		return b, nil
	}
	b := newToolBackend(spec, r.root, r.opts)
	r.backends[key] = b
	r.opts.logger.Debug("backend created", "backend", string(key), "output_root", b.OutputRoot())
	return b, nil
}

// OutputRoot returns the output root given to NewRegistry.
func (r *Registry) OutputRoot() string {
	return r.root
}

func joinNames(names []BackendName) string {
	s := make([]string, len(names))
	for i, n := range names {
		s[i] = string(n)
	}
	return strings.Join(s, ", ")
}
