package insights

// SelectionState is either Empty or Selected.
type SelectionState int

const (
	Empty SelectionState = iota
	Selected
)

func (s SelectionState) String() string {
	if s == Selected {
		return "selected"
	}
	return "empty"
}

// Selector tracks which exercise and which of its sets are shown in detail.
// After Sync the selection is either empty or points at data present in the grouping.
type Selector struct {
	exercise string
	setKey   string
}

// Exercise returns the active exercise name, or "".
func (s *Selector) Exercise() string { return s.exercise }

// SetKey returns the active set key, or "".
func (s *Selector) SetKey() string { return s.setKey }

// State reports whether anything is selected.
func (s *Selector) State() SelectionState {
	if s.exercise == "" {
		return Empty
	}
	return Selected
}

// Sync re-derives a valid selection after the grouping changed.
func (s *Selector) Sync(g *Grouping) {
	if g.Len() == 0 {
		s.exercise, s.setKey = "", ""
		return
	}
	if s.exercise == "" || !g.Has(s.exercise) {
		s.exercise = g.names[0]
		s.setKey = g.FirstKey(s.exercise)
		return
	}
	if g.Find(s.exercise, s.setKey) == nil {
		s.setKey = g.FirstKey(s.exercise)
	}
}

// SelectExercise activates an exercise and its first set. Unknown names are ignored.
func (s *Selector) SelectExercise(g *Grouping, name string) bool {
	if !g.Has(name) {
		return false
	}
	s.exercise = name
	s.setKey = g.FirstKey(name)
	return true
}

// SelectSet activates a set of the current exercise. Keys of other exercises are ignored.
func (s *Selector) SelectSet(g *Grouping, key string) bool {
	if s.exercise == "" || g.Find(s.exercise, key) == nil {
		return false
	}
	s.setKey = key
	return true
}

// Active returns the selected set, or nil.
func (s *Selector) Active(g *Grouping) *SetView {
	if s.exercise == "" {
		return nil
	}
	return g.Find(s.exercise, s.setKey)
}
