package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/noisegraph/pkg/kinds"
	"github.com/matzehuels/noisegraph/pkg/script"
)

func newStepper(t *testing.T, src string) StepModel {
	t.Helper()
	s, err := script.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	env, err := script.Build(s, kinds.Builtin())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { env.Close() })
	return NewStepModel(context.Background(), env, s.Steps)
}

func press(m StepModel, keys ...string) StepModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(StepModel)
	}
	return m
}

func TestStepModelAppliesSteps(t *testing.T) {
	m := newStepper(t, flatScript)

	if v := m.View(); !strings.Contains(v, "▸  1 connect flat.out -> img.field") {
		t.Errorf("initial view does not show the next step:\n%s", v)
	}

	m = press(m, "n")
	if m.Next != 1 || len(m.Results) != 1 || !m.Results[0].OK() {
		t.Fatalf("after n: next=%d results=%v", m.Next, m.Results)
	}

	m = press(m, "enter", "n")
	if m.Next != 2 {
		t.Errorf("stepped past the end: next=%d", m.Next)
	}
	if !m.Results[1].OK() {
		t.Errorf("expected failure not counted as ok: %v", m.Results[1].Err)
	}
	if v := m.View(); !strings.Contains(v, "end of script") || !strings.Contains(v, "TYPE_MISMATCH") {
		t.Errorf("final view:\n%s", v)
	}
}

func TestStepModelTicks(t *testing.T) {
	m := press(newStepper(t, flatScript), "a")
	if m.Next != 2 {
		t.Fatalf("a applied %d steps, want 2", m.Next)
	}

	m = press(m, "t")
	if !strings.HasPrefix(m.Status, "tick x1:") {
		t.Errorf("tick status = %q", m.Status)
	}
	m = press(m, "s")
	if !strings.HasPrefix(m.Status, "settle x") {
		t.Errorf("settle status = %q", m.Status)
	}
	img, _ := m.env.Kinds()["img"].(*kinds.Render).Image()
	if img == nil {
		t.Error("settle left the render without an image")
	}

	if m = press(m, "n"); m.Status == "" {
		t.Error("n at the end of the script cleared the status")
	}
}

func TestStepModelStopsAtMismatch(t *testing.T) {
	src := strings.Replace(flatScript, `expect = "TYPE_MISMATCH"`, ``, 1) + `
[[step]]
op = "tick"
`
	m := press(newStepper(t, src), "a")
	if m.Next != 2 {
		t.Errorf("a ran past a failing step: next=%d", m.Next)
	}
	if v := m.View(); !strings.Contains(v, iconError) {
		t.Errorf("failure not shown:\n%s", v)
	}
}

func TestStepModelQuits(t *testing.T) {
	m := newStepper(t, flatScript)
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Errorf("%q did not quit", k.String())
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q returned a non-quit command", k.String())
		}
	}
}
