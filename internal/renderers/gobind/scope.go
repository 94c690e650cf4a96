package gobind

import (
	"go/token"
	"go/types"
)

// scope tracks the package-level identifiers of the generated file so that
// enum constants from different headers never redeclare a name.
type scope struct {
	taken map[string]bool
}

func newScope() *scope {
	// "time" is the import name used for NSDate fields.
	return &scope{taken: map[string]bool{"time": true}}
}

func (s *scope) available(name string) bool {
	return name != "_" && !s.taken[name] && !token.IsKeyword(name) && types.Universe.Lookup(name) == nil
}

func (s *scope) declare(name string) {
	s.taken[name] = true
}

// constName claims a package-level name for an enum member. A taken name is
// retried with the enum name as prefix; if that is taken too, the blank
// identifier keeps the member's position without declaring anything.
func (s *scope) constName(enum, member string) string {
	for _, name := range []string{member, enum + member} {
		if s.available(name) {
			s.declare(name)
			return name
		}
	}
	return "_"
}
