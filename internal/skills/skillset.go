// Package skills extracts canonical skill sets from normalized text and compares them.
package skills

import (
	"encoding/json"
	"sort"
)

// SkillSet is a set of canonical skill names. The zero value is an empty set ready to use.
type SkillSet struct {
	m map[string]struct{}
}

// NewSkillSet returns a set holding names.
func NewSkillSet(names ...string) SkillSet {
	s := SkillSet{m: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.m[n] = struct{}{}
	}
	return s
}

// Add inserts name. Adding an existing name is a no-op.
func (s *SkillSet) Add(name string) {
	if s.m == nil {
		s.m = make(map[string]struct{})
	}
	s.m[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s SkillSet) Has(name string) bool {
	_, ok := s.m[name]
	return ok
}

// Len returns the number of skills.
func (s SkillSet) Len() int {
	return len(s.m)
}

// Slice returns the names sorted ascending. It never returns nil.
func (s SkillSet) Slice() []string {
	out := make([]string, 0, len(s.m))
	for n := range s.m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Union returns s ∪ other.
func (s SkillSet) Union(other SkillSet) SkillSet {
	out := NewSkillSet()
	for n := range s.m {
		out.m[n] = struct{}{}
	}
	for n := range other.m {
		out.m[n] = struct{}{}
	}
	return out
}

// Intersect returns s ∩ other.
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	out := NewSkillSet()
	for n := range s.m {
		if other.Has(n) {
			out.m[n] = struct{}{}
		}
	}
	return out
}

// Difference returns s − other.
func (s SkillSet) Difference(other SkillSet) SkillSet {
	out := NewSkillSet()
	for n := range s.m {
		if !other.Has(n) {
			out.m[n] = struct{}{}
		}
	}
	return out
}

// Equal reports whether both sets hold the same names.
func (s SkillSet) Equal(other SkillSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for n := range s.m {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes an array of names, dropping duplicates.
func (s *SkillSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSkillSet(names...)
	return nil
}
