package gobind

import (
	"regexp"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/dejo1307/objchdr/internal/objc"
)

// scalarTypes maps C and Foundation scalar typedefs to Go types.
var scalarTypes = map[string]string{
	"BOOL":             "bool",
	"bool":             "bool",
	"_Bool":            "bool",
	"NSInteger":        "int",
	"int":              "int",
	"long":             "int",
	"short":            "int16",
	"char":             "int8",
	"NSUInteger":       "uint",
	"unsigned":         "uint",
	"int8_t":           "int8",
	"int16_t":          "int16",
	"int32_t":          "int32",
	"int64_t":          "int64",
	"uint8_t":          "uint8",
	"uint16_t":         "uint16",
	"uint32_t":         "uint32",
	"uint64_t":         "uint64",
	"size_t":           "uint",
	"NSTimeInterval":   "float64",
	"CGFloat":          "float64",
	"double":           "float64",
	"float":            "float32",
	"unichar":          "uint16",
	"NSStringEncoding": "uint",
}

var (
	identRe = regexp.MustCompile(`[A-Za-z_]\w*`)

	// qualifiers carry no type information for the mapping.
	qualifiers = map[string]bool{
		"const": true, "nullable": true, "nonnull": true, "null_unspecified": true,
		"_Nullable": true, "_Nonnull": true, "_Null_unspecified": true,
		"__nullable": true, "__nonnull": true, "__kindof": true,
		"__strong": true, "__weak": true, "__unsafe_unretained": true,
		"__autoreleasing": true, "signed": true,
	}
)

type index struct {
	classes map[string]*objc.Class
	enums   map[string]*objc.Enum
}

func newIndex(classes []*objc.Class, enums []*objc.Enum) *index {
	idx := &index{classes: map[string]*objc.Class{}, enums: map[string]*objc.Enum{}}
	for _, c := range classes {
		if c != nil {
			if _, ok := idx.classes[c.Name]; !ok {
				idx.classes[c.Name] = c
			}
		}
	}
	for _, e := range enums {
		if e != nil {
			if _, ok := idx.enums[e.Name]; !ok {
				idx.enums[e.Name] = e
			}
		}
	}
	return idx
}

// embeddable reports whether c's superclass is also generated and the
// superclass chain does not loop back to c.
func (idx *index) embeddable(c *objc.Class) bool {
	if _, ok := idx.classes[c.SuperclassName]; !ok {
		return false
	}
	seen := map[string]bool{c.Name: true}
	for name := c.SuperclassName; name != ""; {
		if seen[name] {
			return false
		}
		seen[name] = true
		parent, ok := idx.classes[name]
		if !ok {
			break
		}
		name = parent.SuperclassName
	}
	return true
}

// goType maps a property's Objective-C type to Go. Collections are checked
// before element types because "NSArray<NSString *> *" also mentions NSString.
func (idx *index) goType(p objc.Property) jen.Code {
	switch {
	case p.IsArray():
		return jen.Index().Add(idx.namedType(p.ElementType(), true))
	case p.IsDictionary():
		return jen.Map(jen.String()).Id("any")
	}

	base, pointer := baseType(p.Type)
	if base == "" {
		return jen.Id("any")
	}
	if !pointer {
		if goName, ok := scalarTypes[base]; ok {
			return jen.Id(goName)
		}
		if _, ok := idx.enums[base]; ok {
			return jen.Id(base)
		}
		if p.IsEnum() {
			return jen.Int()
		}
		return jen.Id("any")
	}
	return idx.namedType(base, pointer)
}

// namedType maps a single Objective-C type name. pointer reports whether the
// declaration was an object pointer.
func (idx *index) namedType(name string, pointer bool) jen.Code {
	switch name {
	case "":
		return jen.Id("any")
	case "NSString", "NSMutableString", "NSURL":
		return jen.String()
	case "NSNumber", "NSDecimalNumber":
		return jen.Float64()
	case "NSData":
		return jen.Index().Byte()
	case "NSDate":
		return jen.Qual("time", "Time")
	case "NSDictionary", "NSMutableDictionary":
		return jen.Map(jen.String()).Id("any")
	case "NSArray", "NSMutableArray":
		return jen.Index().Id("any")
	}
	if _, ok := idx.classes[name]; ok && pointer {
		return jen.Op("*").Id(name)
	}
	if _, ok := idx.enums[name]; ok {
		return jen.Id(name)
	}
	return jen.Id("any")
}

// baseType returns the first meaningful identifier of a declared type and
// whether the declaration is a pointer. Block types have no base.
func baseType(t string) (string, bool) {
	if strings.Contains(t, "^") {
		return "", false
	}
	if open, end := strings.IndexByte(t, '<'), strings.LastIndexByte(t, '>'); open >= 0 && end > open {
		t = t[:open] + " " + t[end+1:]
	}
	pointer := strings.Contains(t, "*")
	var words []string
	for _, w := range identRe.FindAllString(t, -1) {
		if !qualifiers[w] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "", pointer
	}
	switch strings.Join(words, " ") {
	case "unsigned int", "unsigned long", "unsigned":
		return "unsigned", pointer
	case "long long":
		return "int64_t", pointer
	case "unsigned long long":
		return "uint64_t", pointer
	}
	return words[0], pointer
}
