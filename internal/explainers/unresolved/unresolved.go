package unresolved

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dejo1307/objchdr/internal/objc"
)

// UnresolvedExplainer reports superclasses and property types that are
// neither extracted from the scanned headers nor provided by an Apple SDK.
// These usually point at headers excluded by ignore patterns or declared
// outside the scanned tree.
type UnresolvedExplainer struct{}

// New creates a new UnresolvedExplainer.
func New() *UnresolvedExplainer {
	return &UnresolvedExplainer{}
}

func (e *UnresolvedExplainer) Name() string {
	return "unresolved"
}

// sdkPrefixes are the class prefixes of Apple frameworks. A two-letter
// match is followed by an upper-case letter, so "NSString" matches "NS"
// while "Nested" does not.
var sdkPrefixes = []string{
	"NS", "UI", "CA", "CG", "CF", "CI", "CL", "CK", "CN", "CT", "CV",
	"AV", "AR", "EK", "GK", "HK", "LA", "MK", "MP", "MF", "MT", "NW",
	"PH", "PK", "QL", "SC", "SF", "SK", "SN", "ST", "UN", "VN", "WC", "WK",
}

// builtinTypes are language-level names that never need a declaration.
var builtinTypes = map[string]bool{
	"BOOL": true, "SEL": true, "IMP": true, "Class": true, "Protocol": true,
}

var identRe = regexp.MustCompile(`[A-Za-z_]\w*`)

var qualifiers = map[string]bool{
	"const": true, "nullable": true, "nonnull": true, "null_unspecified": true,
	"_Nullable": true, "_Nonnull": true, "_Null_unspecified": true,
	"__nullable": true, "__nonnull": true, "__kindof": true,
	"__strong": true, "__weak": true, "__unsafe_unretained": true,
}

// IsSDKType reports whether name belongs to an Apple framework.
func IsSDKType(name string) bool {
	if builtinTypes[name] {
		return true
	}
	for _, p := range sdkPrefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) && isUpper(name[len(p)]) {
			return true
		}
	}
	return false
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// referencedTypes returns the capitalized type names a property refers to:
// the outer type and, for NSArray<T>, the element type. Scalars such as
// "int" or "id" are lower-case and skipped.
func referencedTypes(p objc.Property) []string {
	if strings.Contains(p.Type, "^") {
		return nil
	}
	var out []string
	for _, w := range identRe.FindAllString(p.Type, -1) {
		if qualifiers[w] {
			continue
		}
		if isUpper(w[0]) {
			out = append(out, w)
		}
		break
	}
	if elem := p.ElementType(); elem != "" && isUpper(elem[0]) {
		out = append(out, elem)
	}
	return out
}

// Explain collects references to unknown types.
func (e *UnresolvedExplainer) Explain(ctx context.Context, snapshot *objc.Snapshot) ([]objc.Insight, error) {
	known := make(map[string]bool)
	for _, c := range snapshot.Classes {
		known[c.Name] = true
	}
	for _, en := range snapshot.Enums {
		known[en.Name] = true
	}
	resolved := func(name string) bool {
		return name == "" || known[name] || IsSDKType(name)
	}

	var supers, props []objc.Evidence
	superNames := make(map[string]bool)
	propNames := make(map[string]bool)
	for _, c := range snapshot.Classes {
		if !resolved(c.SuperclassName) {
			superNames[c.SuperclassName] = true
			supers = append(supers, objc.Evidence{
				File:   c.FilePath,
				Symbol: c.Name,
				Detail: fmt.Sprintf("superclass %q is not declared in any scanned header", c.SuperclassName),
			})
		}
		for _, p := range c.Properties {
			for _, name := range referencedTypes(p) {
				if resolved(name) {
					continue
				}
				propNames[name] = true
				props = append(props, objc.Evidence{
					File:   c.FilePath,
					Symbol: c.Name + "." + p.Name,
					Detail: fmt.Sprintf("type %q is not declared in any scanned header", name),
				})
			}
		}
	}

	var insights []objc.Insight
	if len(supers) > 0 {
		insights = append(insights, objc.Insight{
			Title:       fmt.Sprintf("Unresolved superclasses (%d)", len(superNames)),
			Description: fmt.Sprintf("Classes inherit from types that were not extracted: %s.", joinSorted(superNames)),
			Confidence:  0.8,
			Evidence:    supers,
			Actions: []string{
				"Check the ignore patterns for excluded headers",
				"Scan the directory that declares the superclass",
			},
		})
	}
	if len(props) > 0 {
		insights = append(insights, objc.Insight{
			Title:       fmt.Sprintf("Unresolved property types (%d)", len(propNames)),
			Description: fmt.Sprintf("Properties refer to types that were not extracted: %s.", joinSorted(propNames)),
			Confidence:  0.6,
			Evidence:    props,
			Actions: []string{
				"Scan the headers that declare these types",
				"Generated bindings map unresolved types to any",
			},
		})
	}
	return insights, nil
}

func joinSorted(set map[string]bool) string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
