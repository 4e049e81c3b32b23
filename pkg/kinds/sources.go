package kinds

import (
	errs "github.com/matzehuels/noisegraph/pkg/errors"
	"github.com/matzehuels/noisegraph/pkg/graph"
)

// sources binds the upstream producer of each connected input slot.
// S is the producer interface the slot accepts.
type sources[S any] map[int]S

// attach accepts a.Source only if it implements S. Kinds that carry the
// right pin type but publish no field are turned away here.
func (m sources[S]) attach(kind, want string, a graph.Attachment, commit bool) error {
	s, ok := a.Source.(S)
	if !ok {
		return errs.New(errs.ErrCodeIncompatibleSourceKind,
			"%s input %d needs a %s source, %s publishes none", kind, a.DestSlot, want, a.Source.Kind())
	}
	if commit {
		m[a.DestSlot] = s
	}
	return nil
}

func (m sources[S]) detach(a graph.Attachment) {
	delete(m, a.DestSlot)
}

func field3D(m sources[Sampler3D], kind string, slot int) (Field3D, error) {
	s, ok := m[slot]
	if !ok {
		return nil, errs.New(errs.ErrCodeInternal, "%s input %d has no source", kind, slot)
	}
	f := s.Field3D()
	if f == nil {
		return nil, errs.New(errs.ErrCodeInternal, "%s input %d: source has not computed", kind, slot)
	}
	return f, nil
}

func field2D(m sources[Sampler2D], kind string, slot int) (Field2D, error) {
	s, ok := m[slot]
	if !ok {
		return nil, errs.New(errs.ErrCodeInternal, "%s input %d has no source", kind, slot)
	}
	f := s.Field2D()
	if f == nil {
		return nil, errs.New(errs.ErrCodeInternal, "%s input %d: source has not computed", kind, slot)
	}
	return f, nil
}

// generator is embedded by kinds without inputs.
type generator struct{}

func (generator) OnSourceAttached(graph.Attachment, bool) error {
	return errs.New(errs.ErrCodeInternal, "generator has no inputs")
}

func (generator) OnSourceDetached(graph.Attachment) {}
