package project

// CommandSet is an insertion-ordered mapping from action key to CommandSpec.
// The zero value is an empty set. Overlay returns a new set and never mutates
// either operand.
type CommandSet struct {
	keys  []string
	specs map[string]CommandSpec
}

// NewCommandSet builds a set from key/spec pairs in order.
func NewCommandSet(entries ...Command) CommandSet {
	var s CommandSet
	for _, e := range entries {
		s.Set(e.Key, e.Spec)
	}
	return s
}

// Command is a keyed CommandSpec, used when iterating a CommandSet.
type Command struct {
	Key  string
	Spec CommandSpec
}

// Set assigns a spec to key. An existing key keeps its position.
// Specs with an empty argv are ignored.
func (s *CommandSet) Set(key string, spec CommandSpec) {
	if key == "" || len(spec.Argv) == 0 {
		return
	}
	if s.specs == nil {
		s.specs = make(map[string]CommandSpec)
	}
	if _, ok := s.specs[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.specs[key] = spec.Clone()
}

// Get returns the CommandSpec stored under key.
func (s CommandSet) Get(key string) (CommandSpec, bool) {
	spec, ok := s.specs[key]
	if !ok {
		return CommandSpec{}, false
	}
	return spec.Clone(), true
}

// Len returns the number of commands.
func (s CommandSet) Len() int {
	return len(s.keys)
}

// Keys returns the action keys in insertion order.
func (s CommandSet) Keys() []string {
	return append([]string(nil), s.keys...)
}

// All returns every command in insertion order.
func (s CommandSet) All() []Command {
	out := make([]Command, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Command{Key: k, Spec: s.specs[k].Clone()})
	}
	return out
}

// Clone returns an independent copy.
func (s CommandSet) Clone() CommandSet {
	var out CommandSet
	for _, k := range s.keys {
		out.Set(k, s.specs[k])
	}
	return out
}

// Overlay returns a new set where every command in top replaces the command
// with the same key in s. Replaced keys keep their original slot, new keys are
// appended in top's order.
func (s CommandSet) Overlay(top CommandSet) CommandSet {
	out := s.Clone()
	for _, k := range top.keys {
		out.Set(k, top.specs[k])
	}
	return out
}
