package kinds

import (
	"slices"
	"sync"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
)

// Constructor returns a fresh kind instance with default settings.
type Constructor func() graph.Kind

// Info describes a registered kind, as reported by [Registry.Info].
type Info struct {
	Name     string
	Doc      string
	Layout   graph.Layout
	Required int            // input slots that must be connected
	Params   map[string]any // defaults, nil for kinds without settings
}

type entry struct {
	doc  string
	ctor Constructor
}

// Registry maps kind names to constructors. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Builtin returns a registry holding every kind in this package.
func Builtin() *Registry {
	r := NewRegistry()
	r.MustRegister("perlin3d", "seeded gradient noise", func() graph.Kind { return NewPerlin3D() })
	r.MustRegister("billow3d", "folded multi-octave noise", func() graph.Kind { return NewBillow3D() })
	r.MustRegister("constant2d", "uniform 2D field", func() graph.Kind { return NewConstant2D() })
	r.MustRegister("probe3d", "Noise3D marker output without a field", func() graph.Kind { return NewProbe3D() })
	r.MustRegister("scale", "multiply a 3D field by a factor", func() graph.Kind { return NewScale() })
	r.MustRegister("add", "sum of two 3D fields, second optional", func() graph.Kind { return NewAdd() })
	r.MustRegister("slice", "cut a 3D field at depth z", func() graph.Kind { return NewSlice() })
	r.MustRegister("render", "rasterize a 2D field on a worker", func() graph.Kind { return NewRender() })
	return r
}

// Register adds a kind. It fails if the name is empty or already taken.
func (r *Registry) Register(name, doc string, c Constructor) error {
	if name == "" || c == nil {
		return errs.New(errs.ErrCodeInvalidInput, "kind needs a name and a constructor")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return errs.New(errs.ErrCodeInvalidInput, "kind %q already registered", name)
	}
	r.entries[name] = entry{doc: doc, ctor: c}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name, doc string, c Constructor) {
	if err := r.Register(name, doc, c); err != nil {
		panic(err)
	}
}

// New constructs the named kind and applies params in key order.
func (r *Registry) New(name string, params map[string]any) (graph.Kind, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errs.New(errs.ErrCodeUnknownKind, "unknown kind %q", name)
	}
	k := e.ctor()
	if len(params) == 0 {
		return k, nil
	}
	c, ok := k.(graph.Configurable)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidParam, "kind %q takes no parameters", name)
	}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if err := c.SetParam(key, params[key]); err != nil {
			return nil, err
		}
	}
	return k, nil
}

// Names returns the registered kind names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Info describes the named kind using a throwaway instance.
func (r *Registry) Info(name string) (Info, bool) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return Info{}, false
	}
	k := e.ctor()
	info := Info{Name: name, Doc: e.doc, Layout: k.Layout()}
	info.Required = len(info.Layout.Inputs)
	if req, ok := k.(graph.InputRequirer); ok {
		info.Required = req.RequiredInputCount()
	}
	if p, ok := k.(Parameterized); ok {
		info.Params = p.Params()
	}
	return info, true
}
