package objc

import (
	"fmt"
	"regexp"
	"strings"
)

// Property is a single @property declaration inside an @interface block.
//
// The classification helpers (IsArray, IsDictionary, IsEnum, ...) are
// substring heuristics over Type, not a type grammar. They accept generic
// forms such as "NSArray<NSString *> *" without tokenizing them, and they
// report false positives for type names that merely contain a platform name
// (e.g. "MyNSArrayWrapper *" is treated as an array).
type Property struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Attributes string `json:"attributes"`
}

var (
	// trailingMacroRe matches availability/annotation macros that may follow
	// the property name, e.g. "NS_SWIFT_NAME(foo)" or "API_AVAILABLE(ios(13))".
	trailingMacroRe = regexp.MustCompile(
		`\s+(?:(?:NS|API|UI|CF|OBJC)_[A-Z0-9_]*(?:\(.*\))?|__attribute__\s*\(\(.*\)\))\s*$`)

	arrayElementRe = regexp.MustCompile(`NSArray\s*<\s*(?:__kindof\s+)?([A-Za-z_]\w*)`)

	// blockNameRe finds the name in a block declaration such as
	// "void (^completion)(NSError *error)".
	blockNameRe = regexp.MustCompile(`\(\s*\^\s*(?:_\w+\s+)?(\w+)\s*\)`)
)

// NewProperty builds a Property from the declaration text following
// "@property(attrs)" (type and name, without the terminating ';') and the raw
// attribute text found between the parentheses.
//
// The name is the trailing identifier after the last whitespace or '*'; the
// rest, '*' included, is the type. A lone token becomes the name with an empty
// type. Malformed input never fails.
func NewProperty(decl, attrs string) Property {
	decl = strings.TrimSpace(decl)
	for {
		stripped := trailingMacroRe.ReplaceAllString(decl, "")
		if stripped == decl {
			break
		}
		decl = strings.TrimSpace(stripped)
	}

	p := Property{Attributes: strings.TrimSpace(attrs)}

	if loc := blockNameRe.FindStringSubmatchIndex(decl); loc != nil {
		p.Name = decl[loc[2]:loc[3]]
		p.Type = strings.TrimSpace(decl[:loc[2]] + decl[loc[3]:])
		return p
	}

	idx := strings.LastIndexFunc(decl, func(r rune) bool {
		return r == '*' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if idx < 0 {
		p.Name = decl
		return p
	}

	p.Name = strings.TrimSpace(decl[idx+1:])
	p.Type = strings.TrimSpace(decl[:idx+1])
	if p.Name == "" {
		// "NSString *" with nothing after it: keep whatever we have as the name.
		p.Name = p.Type
		p.Type = ""
	}
	return p
}

// IsAssign reports whether the attributes request assign semantics,
// the usual marker of a scalar property.
func (p Property) IsAssign() bool {
	return strings.Contains(p.Attributes, "assign")
}

// IsEnum reports whether the type looks like a platform enum or scalar
// typedef: no pointer and an "NS" prefix somewhere in the type.
func (p Property) IsEnum() bool {
	return !strings.Contains(p.Type, "*") && strings.Contains(p.Type, "NS")
}

// IsNumber reports whether the type mentions NSNumber.
func (p Property) IsNumber() bool {
	return strings.Contains(p.Type, "NSNumber")
}

// IsString reports whether the type mentions NSString.
func (p Property) IsString() bool {
	return strings.Contains(p.Type, "NSString")
}

// IsArray reports whether the type mentions NSArray. NSMutableArray does not
// contain that substring and is not matched.
func (p Property) IsArray() bool {
	return strings.Contains(p.Type, "NSArray")
}

// IsDictionary reports whether the type mentions NSDictionary.
func (p Property) IsDictionary() bool {
	return strings.Contains(p.Type, "NSDictionary")
}

// IsArrayOfDictionary reports whether the type is an array that mentions
// NSDictionary, typically NSArray<NSDictionary *> *.
func (p Property) IsArrayOfDictionary() bool {
	return p.IsArray() && p.IsDictionary()
}

// IsArrayOfString reports whether the type is an array that mentions NSString.
func (p Property) IsArrayOfString() bool {
	return p.IsArray() && p.IsString()
}

// IsArrayOfNumber reports whether the type is an array that mentions NSNumber.
func (p Property) IsArrayOfNumber() bool {
	return p.IsArray() && p.IsNumber()
}

// ElementType returns the first generic argument of an NSArray type, e.g.
// "NSString" for "NSArray<NSString *> *". It is empty for untyped arrays
// and non-array properties.
func (p Property) ElementType() string {
	m := arrayElementRe.FindStringSubmatch(p.Type)
	if m == nil {
		return ""
	}
	return m[1]
}

func (p Property) String() string {
	return fmt.Sprintf("<Property name=%s type=%q attributes=%q>", p.Name, p.Type, p.Attributes)
}
