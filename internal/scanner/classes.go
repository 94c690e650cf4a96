package scanner

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/dejo1307/objchdr/internal/objc"
)

// --- Regex patterns ---

var (
	// keywordRe finds the directives that drive the class state machine.
	// A line can carry more than one ("@interface Foo : Bar @end").
	keywordRe = regexp.MustCompile(`@(?:interface|property|end)\b`)

	// interfaceRe matches "@interface Name : Super" with optional lightweight
	// generics on the class and an optional protocol list after the superclass.
	// Categories ("@interface Foo (Bar)") and root classes do not match.
	interfaceRe = regexp.MustCompile(
		`^@interface\s+(\w+)\s*(?:<[^>]*>)?\s*:\s*(\w+)\s*(?:<([^>]*)>)?`)

	// propertyRe splits a complete property statement into attributes and
	// the "Type name" declaration. The attribute list is optional.
	propertyRe = regexp.MustCompile(`^@property\s*(?:\(([^)]*)\))?\s*([^;]*?)\s*(?:;|$)`)
)

// classState is the state of the class scanner.
type classState int

const (
	outside     classState = iota // no open @interface
	insideClass                   // between a matched @interface and its @end
)

// classScanner is the state machine that attributes @property lines to the
// enclosing @interface. Transitions:
//
//	outside/insideClass --@interface--> insideClass (unfinished class abandoned)
//	insideClass         --@property---> insideClass (property appended)
//	insideClass         --@end--------> outside     (class emitted)
//	outside             --@end--------> outside     (no-op)
type classScanner struct {
	path    string
	state   classState
	current *objc.Class
	classes []*objc.Class

	// pending accumulates a @property statement wrapped over several lines
	// until its terminating ';' shows up.
	pending    strings.Builder
	hasPending bool
}

// scanClasses runs the class state machine over content, line by line.
func scanClasses(path, content string) []*objc.Class {
	s := &classScanner{path: path, classes: []*objc.Class{}}

	maxLine := 1024 * 1024
	if len(content)+1 > maxLine {
		maxLine = len(content) + 1
	}
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	for sc.Scan() {
		s.feedLine(sc.Text())
	}

	// An @interface still open at EOF has no @end and is dropped.
	return s.classes
}

// feedLine splits a line at each directive and feeds the pieces in order.
// Text before the first directive can only continue a wrapped @property.
func (s *classScanner) feedLine(line string) {
	locs := keywordRe.FindAllStringIndex(line, -1)

	head := line
	if len(locs) > 0 {
		head = line[:locs[0][0]]
	}
	if s.hasPending {
		s.continueProperty(head)
	}

	for i, loc := range locs {
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		s.feedDirective(strings.TrimSpace(line[loc[0]:end]))
	}
}

func (s *classScanner) feedDirective(stmt string) {
	switch {
	case strings.HasPrefix(stmt, "@interface"):
		s.flushProperty()
		m := interfaceRe.FindStringSubmatch(stmt)
		if m == nil {
			return
		}
		// Any class still open lost its @end; it is abandoned.
		s.current = objc.NewClass(s.path, m[1], m[2])
		s.current.Protocols = splitProtocols(m[3])
		s.state = insideClass

	case strings.HasPrefix(stmt, "@property"):
		s.flushProperty()
		if s.state != insideClass {
			return
		}
		if strings.Contains(stmt, ";") {
			s.addProperty(stmt)
			return
		}
		s.pending.WriteString(stmt)
		s.hasPending = true

	case strings.HasPrefix(stmt, "@end"):
		s.flushProperty()
		if s.state != insideClass {
			return
		}
		s.classes = append(s.classes, s.current)
		s.current = nil
		s.state = outside
	}
}

// continueProperty appends a continuation line to a wrapped @property and
// completes it once the ';' arrives.
func (s *classScanner) continueProperty(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if startsDeclaration(text) {
		// The property lost its ';'; the next declaration is not part of it.
		s.flushProperty()
		return
	}
	s.pending.WriteByte(' ')
	s.pending.WriteString(text)
	if strings.Contains(text, ";") {
		s.flushProperty()
	}
}

// flushProperty parses whatever has been accumulated for a wrapped property,
// terminated or not, so a missing ';' still yields a best-effort property.
func (s *classScanner) flushProperty() {
	if !s.hasPending {
		return
	}
	stmt := s.pending.String()
	s.pending.Reset()
	s.hasPending = false
	if s.state == insideClass {
		s.addProperty(stmt)
	}
}

func (s *classScanner) addProperty(stmt string) {
	m := propertyRe.FindStringSubmatch(stmt)
	if m == nil {
		return
	}
	p := objc.NewProperty(m[2], m[1])
	if p.Name == "" {
		return
	}
	s.current.AddProperty(p)
}

// startsDeclaration reports whether a line opens a method, a preprocessor
// directive or a closing brace rather than continuing a wrapped property.
func startsDeclaration(line string) bool {
	switch line[0] {
	case '-', '+', '}', '#':
		return true
	}
	return false
}

// splitProtocols turns "NSCopying, NSCoding" into its names.
func splitProtocols(list string) []string {
	var result []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
