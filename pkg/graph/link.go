package graph

// Link is a committed edge from an output pin to an input pin.
type Link struct {
	id      LinkID
	src     PinID
	dst     PinID
	srcNode NodeID
	dstNode NodeID
}

func (l *Link) ID() LinkID { return l.id }

// Source is the output-side pin.
func (l *Link) Source() PinID { return l.src }

// Dest is the input-side pin.
func (l *Link) Dest() PinID { return l.dst }

func (l *Link) SourceNode() NodeID { return l.srcNode }
func (l *Link) DestNode() NodeID   { return l.dstNode }
