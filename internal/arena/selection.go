package arena

import "slices"

// Selection is the two-slot model picker of the battle screen. Picking a
// third model drops the oldest pick.
type Selection struct {
	ids []string
}

// Toggle adds id, or removes it when already picked.
func (s *Selection) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	if len(s.ids) == 2 {
		s.ids = s.ids[1:]
	}
	s.ids = append(s.ids, id)
}

// IDs returns the picks, oldest first.
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}

// Ready reports whether two models are picked.
func (s *Selection) Ready() bool {
	return len(s.ids) == 2
}

// Contains reports whether id is picked.
func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) Clear() {
	s.ids = nil
}
