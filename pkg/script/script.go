package script

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/noisegraph/pkg/errors"
)

// Op names a step operation.
type Op string

const (
	OpConnect    Op = "connect"    // commit a link
	OpCheck      Op = "check"      // preview a link without committing
	OpDisconnect Op = "disconnect" // remove the link feeding an input
	OpRemove     Op = "remove"     // remove a node and its links
	OpSet        Op = "set"        // change a node parameter
	OpDirty      Op = "dirty"      // mark a node dirty
	OpTick       Op = "tick"       // run recompute passes
)

var ops = []Op{OpConnect, OpCheck, OpDisconnect, OpRemove, OpSet, OpDirty, OpTick}

// Script is a parsed edit script.
type Script struct {
	Nodes []NodeDecl `toml:"node"`
	Steps []Step     `toml:"step"`
}

// NodeDecl declares a node created before any step runs.
type NodeDecl struct {
	Name   string         `toml:"name"`
	Kind   string         `toml:"kind"`
	Params map[string]any `toml:"params"`
}

// Step is one operation. Which fields apply depends on Op.
type Step struct {
	Op     Op     `toml:"op"`
	From   string `toml:"from"`   // connect, check, disconnect (optional)
	To     string `toml:"to"`     // connect, check, disconnect
	Node   string `toml:"node"`   // remove, set, dirty
	Param  string `toml:"param"`  // set
	Value  any    `toml:"value"`  // set
	Count  int    `toml:"count"`  // tick: passes to run, default 1
	Settle bool   `toml:"settle"` // tick: repeat until nothing is pending
	Expect string `toml:"expect"` // error code the step must fail with
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "script %s", path)
	}
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidScript, err, "%s", path)
	}
	return s, nil
}

// Parse decodes and validates a script. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidScript, err, "decode script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidScript, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the script's shape. It does not resolve kinds or pins;
// those fail when the script runs.
func (s *Script) Validate() error {
	seen := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		switch {
		case n.Name == "":
			return invalid("node %d has no name", i)
		case strings.Contains(n.Name, "."):
			return invalid("node name %q must not contain '.'", n.Name)
		case n.Kind == "":
			return invalid("node %q has no kind", n.Name)
		case seen[n.Name]:
			return invalid("node %q declared twice", n.Name)
		}
		seen[n.Name] = true
	}

	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return invalid("step %d (%s): %s", i+1, st.Op, errs.UserMessage(err))
		}
	}
	return nil
}

func (st Step) validate() error {
	if !slices.Contains(ops, st.Op) {
		return invalid("unknown op %q", st.Op)
	}
	if st.Expect != "" && st.Op == OpTick {
		return invalid("tick steps cannot expect an error")
	}
	switch st.Op {
	case OpConnect, OpCheck:
		if st.From == "" || st.To == "" {
			return invalid("needs from and to")
		}
	case OpDisconnect:
		if st.To == "" {
			return invalid("needs to")
		}
	case OpRemove, OpDirty:
		if st.Node == "" {
			return invalid("needs node")
		}
	case OpSet:
		if st.Node == "" || st.Param == "" || st.Value == nil {
			return invalid("needs node, param and value")
		}
	case OpTick:
		if st.Count < 0 {
			return invalid("count must not be negative")
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errs.New(errs.ErrCodeInvalidScript, format, args...)
}
