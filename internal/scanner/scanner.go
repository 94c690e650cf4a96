// Package scanner recovers Objective-C classes and NS_ENUM declarations from
// raw header text.
//
// Classes are found by a line-oriented state machine so that each @property
// is attributed to its enclosing @interface. Enums are found by a single
// regular expression over the whole file, since an NS_ENUM body is one
// contiguous construct.
package scanner

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dejo1307/objchdr/internal/objc"
)

// Result is the outcome of scanning one header. Both slices are non-nil and
// ordered: classes by the position of their closing @end, enums by position.
type Result struct {
	Classes []*objc.Class
	Enums   []*objc.Enum
}

// Empty reports whether the header declared nothing we recognize.
func (r Result) Empty() bool {
	return len(r.Classes) == 0 && len(r.Enums) == 0
}

// Scan parses the content of a header file. It never fails: unrecognized
// constructs are skipped and an unterminated @interface is dropped.
func Scan(path, content string) Result {
	clean := stripComments(content)
	return Result{
		Classes: scanClasses(path, clean),
		Enums:   scanEnums(path, clean),
	}
}

// ScanReader reads r fully and scans it. Only read errors are returned.
func ScanReader(path string, r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Scan(path, string(data)), nil
}

// enumRe matches NS_ENUM(Type, Name) { body };. NS_OPTIONS has the same shape.
// The body may not contain '{', so an unclosed enum stops at the next
// declaration's brace instead of absorbing it.
var enumRe = regexp.MustCompile(
	`\bNS_(?:ENUM|OPTIONS)\s*\(\s*(\w+)\s*,\s*(\w+)\s*\)\s*\{([^{}]*)\}\s*;`)

// scanEnums returns every NS_ENUM/NS_OPTIONS in content, in source order.
func scanEnums(path, content string) []*objc.Enum {
	enums := []*objc.Enum{}
	for _, m := range enumRe.FindAllStringSubmatch(content, -1) {
		storageType, name, body := m[1], m[2], m[3]

		raw := strings.Split(body, ",")
		members := make([]string, 0, len(raw))
		for _, v := range raw {
			// Empty tokens from a trailing comma are kept.
			members = append(members, strings.TrimSpace(v))
		}
		enums = append(enums, objc.NewEnum(path, name, storageType, members))
	}
	return enums
}
