package graph

import "fmt"

// Direction is the side of a node a pin sits on.
type Direction uint8

const (
	// Input pins consume a value and accept at most one link.
	Input Direction = iota
	// Output pins produce a value and fan out to any number of links.
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// TypeTag is the semantic type a pin carries, e.g. "Noise3D" or "Image".
// Two pins may only be linked when their tags are equal.
type TypeTag string

// PinSpec declares one pin in a [Layout].
type PinSpec struct {
	Name string
	Type TypeTag
}

// Pin is a typed connection point owned by exactly one node.
// Pins are created with their node and never move between nodes.
// Only the [Store] changes a pin's link count.
type Pin struct {
	id    PinID
	owner NodeID
	name  string
	dir   Direction
	typ   TypeTag
	slot  int
	links int
}

func (p *Pin) ID() PinID            { return p.id }
func (p *Pin) Owner() NodeID        { return p.owner }
func (p *Pin) Name() string         { return p.name }
func (p *Pin) Direction() Direction { return p.dir }
func (p *Pin) Type() TypeTag        { return p.typ }

// Slot is the pin's index among its node's inputs or outputs.
func (p *Pin) Slot() int { return p.slot }

// LinkCount is 0 or 1 for inputs and unbounded for outputs.
func (p *Pin) LinkCount() int { return p.links }

func (p *Pin) IsInput() bool     { return p.dir == Input }
func (p *Pin) IsConnected() bool { return p.links > 0 }

// IsConnectable reports whether a link between p and other would pass the
// pin-level checks: opposite directions, equal type tags, distinct owners,
// and an input side that has no source yet. It does not check for cycles or
// ask the destination kind.
func (p *Pin) IsConnectable(other *Pin) bool {
	if other == nil || p.owner == other.owner || p.dir == other.dir || p.typ != other.typ {
		return false
	}
	dst := p
	if other.IsInput() {
		dst = other
	}
	return !dst.IsConnected()
}

func (p *Pin) String() string {
	return fmt.Sprintf("%s %s(%s)", p.dir, p.name, p.typ)
}

func (p *Pin) addLink() {
	if p.dir == Input && p.links > 0 {
		panic(fmt.Sprintf("graph: input pin %v already has a source", p.id))
	}
	p.links++
}

func (p *Pin) removeLink() {
	if p.links == 0 {
		panic(fmt.Sprintf("graph: pin %v has no link to remove", p.id))
	}
	p.links--
}
