package gobind

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/dejo1307/objchdr/internal/objc"
)

var (
	intLiteralRe = regexp.MustCompile(`^\(?\s*(-?(?:0[xX][0-9a-fA-F]+|\d+))[uUlL]*\s*\)?$`)
	shiftRe      = regexp.MustCompile(`^\(?\s*(0[xX][0-9a-fA-F]+|\d+)[uUlL]*\s*<<\s*(\d+)[uUlL]*\s*\)?$`)
)

type member struct {
	name  string // Go identifier, may differ from orig after a collision
	orig  string
	expr  string // right-hand side as written, empty when implicit
	value int64
	text  string // Go literal for value, empty when expr is not an integer literal
}

func writeEnum(f *jen.File, e *objc.Enum, sc *scope) {
	storage := "int"
	if base, _ := baseType(e.StorageType); base != "" {
		if goName, ok := scalarTypes[base]; ok {
			storage = goName
		}
	}

	f.Commentf("%s mirrors the %s-backed enum declared in %s.", e.Name, e.StorageType, e.FilePath)
	f.Type().Id(e.Name).Id(storage)

	members := parseMembers(e.Members)
	if len(members) == 0 {
		f.Line()
		return
	}
	for i := range members {
		members[i].name = sc.constName(e.Name, members[i].orig)
	}

	explicit := false
	for _, m := range members {
		if m.expr != "" {
			explicit = true
			break
		}
	}

	f.Const().DefsFunc(func(g *jen.Group) {
		if !explicit {
			for i, m := range members {
				stmt := g.Id(m.name)
				if i == 0 {
					stmt.Id(e.Name).Op("=").Iota()
				}
				if note := m.note(""); note != "" {
					stmt.Comment(note)
				}
			}
			return
		}
		var next int64
		for _, m := range members {
			stmt := g.Id(m.name).Id(e.Name).Op("=")
			var valueNote string
			switch {
			case m.text != "":
				next = m.value
				stmt.Op(m.text)
			default:
				stmt.Op(strconv.FormatInt(next, 10))
				if m.expr != "" {
					valueNote = "= " + m.expr
				}
			}
			if note := m.note(valueNote); note != "" {
				stmt.Comment(note)
			}
			next++
		}
	})
	f.Line()
}

// parseMembers splits raw members into names and values. Empty members
// (from a trailing comma) and repeated names are skipped.
func parseMembers(raw []string) []member {
	var out []member
	seen := map[string]bool{}
	for _, r := range raw {
		left, expr, _ := strings.Cut(r, "=")
		name := identRe.FindString(left)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		m := member{name: name, orig: name, expr: strings.TrimSpace(expr)}
		m.value, m.text = integerValue(m.expr)
		out = append(out, m)
	}
	return out
}

// note is the trailing comment for a member: the original name when it had
// to be renamed, followed by valueNote.
func (m member) note(valueNote string) string {
	var parts []string
	switch {
	case m.name == "_":
		parts = append(parts, m.orig+" is already declared")
	case m.name != m.orig:
		parts = append(parts, m.orig)
	}
	if valueNote != "" {
		parts = append(parts, valueNote)
	}
	return strings.Join(parts, " ")
}

// integerValue evaluates an integer literal or a "literal << n" shift and
// returns its value and Go spelling. text is empty for anything else.
func integerValue(expr string) (value int64, text string) {
	if m := intLiteralRe.FindStringSubmatch(expr); m != nil {
		v, err := strconv.ParseInt(m[1], 0, 64)
		if err != nil {
			return 0, ""
		}
		return v, m[1]
	}
	if m := shiftRe.FindStringSubmatch(expr); m != nil {
		base, err := strconv.ParseInt(m[1], 0, 64)
		if err != nil {
			return 0, ""
		}
		shift, err := strconv.ParseUint(m[2], 10, 6)
		if err != nil {
			return 0, ""
		}
		return base << shift, fmt.Sprintf("%s << %s", m[1], m[2])
	}
	return 0, ""
}
