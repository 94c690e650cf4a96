package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dejo1307/objchdr/internal/objc"
)

// Renderer produces a markdown digest of the extracted classes and enums.
type Renderer struct {
	fileName string
	maxChars int
}

// New creates a summary renderer writing fileName within maxChars characters.
func New(fileName string, maxChars int) *Renderer {
	if fileName == "" {
		fileName = "headers.md"
	}
	if maxChars <= 0 {
		maxChars = 64000
	}
	return &Renderer{fileName: fileName, maxChars: maxChars}
}

func (r *Renderer) Name() string {
	return "summary"
}

// section holds a rendered section with its display name.
type section struct {
	name    string
	content string
}

// Render produces the markdown artifact. Sections are ordered by priority;
// lower-priority sections are truncated or omitted first when the character
// budget is tight.
func (r *Renderer) Render(ctx context.Context, snapshot *objc.Snapshot) ([]objc.Artifact, error) {
	sections := []section{
		{"Overview", renderOverview(snapshot)},
		{"Insights", renderInsights(snapshot)},
		{"Class Hierarchy", renderHierarchy(snapshot)},
		{"Enums", renderEnums(snapshot)},
		{"Classes", renderClasses(snapshot)},
	}

	header := "# Objective-C Header Summary\n\n"
	remaining := r.maxChars - len(header)

	var sb strings.Builder
	sb.WriteString(header)

	for i, sec := range sections {
		if sec.content == "" {
			continue
		}
		if len(sec.content) <= remaining {
			sb.WriteString(sec.content)
			remaining -= len(sec.content)
			continue
		}
		if remaining > 200 {
			// Cut at a line boundary inside this section.
			cut := truncate(sec.content, remaining-100)
			if idx := strings.LastIndex(cut, "\n"); idx > 0 {
				cut = cut[:idx+1]
			}
			sb.WriteString(cut)
			sb.WriteString(fmt.Sprintf("\n---\n*[Truncated in: %s]*\n", sec.name))
			i++
		}
		var omitted []string
		for _, s := range sections[i:] {
			if s.content != "" {
				omitted = append(omitted, s.name)
			}
		}
		if len(omitted) > 0 {
			sb.WriteString(fmt.Sprintf("\n---\n*[Omitted: %s]*\n", strings.Join(omitted, ", ")))
		}
		break
	}

	return []objc.Artifact{
		{
			Name:    r.fileName,
			Content: []byte(sb.String()),
			Type:    "text/markdown",
		},
	}, nil
}

// truncate returns at most n bytes of s without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func renderInsights(s *objc.Snapshot) string {
	if len(s.Insights) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Insights\n\n")
	for _, in := range s.Insights {
		sb.WriteString(fmt.Sprintf("- **%s** (%.0f%%): %s\n", in.Title, in.Confidence*100, in.Description))
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderOverview(s *objc.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("## Overview\n\n")
	if s.Meta.RepoPath != "" {
		sb.WriteString(fmt.Sprintf("- Repository: `%s`\n", s.Meta.RepoPath))
	}
	sb.WriteString(fmt.Sprintf("- Headers scanned: %d\n", s.Meta.HeaderCount))
	sb.WriteString(fmt.Sprintf("- Classes: %d\n", len(s.Classes)))
	sb.WriteString(fmt.Sprintf("- Enums: %d\n", len(s.Enums)))
	if s.Meta.ID != "" {
		sb.WriteString(fmt.Sprintf("- Snapshot: %s\n", s.Meta.ID))
	}
	if s.Meta.GeneratedAt != "" {
		sb.WriteString(fmt.Sprintf("- Generated: %s\n", s.Meta.GeneratedAt))
	}
	sb.WriteString("\n")
	return sb.String()
}

// renderHierarchy lists each extracted class under its superclass. Classes
// whose superclass was not extracted become roots under that external name.
func renderHierarchy(s *objc.Snapshot) string {
	if len(s.Classes) == 0 {
		return ""
	}

	known := make(map[string]bool, len(s.Classes))
	children := make(map[string][]string)
	for _, c := range s.Classes {
		if known[c.Name] {
			continue
		}
		known[c.Name] = true
		children[c.SuperclassName] = append(children[c.SuperclassName], c.Name)
	}

	var roots []string
	for parent := range children {
		if !known[parent] {
			roots = append(roots, parent)
		}
	}
	sort.Strings(roots)

	var sb strings.Builder
	sb.WriteString("## Class Hierarchy\n\n")
	var walk func(name string, depth int, seen map[string]bool)
	walk = func(name string, depth int, seen map[string]bool) {
		kids := append([]string(nil), children[name]...)
		sort.Strings(kids)
		for _, k := range kids {
			if seen[k] {
				continue
			}
			seen[k] = true
			sb.WriteString(fmt.Sprintf("%s- `%s`\n", strings.Repeat("  ", depth), k))
			walk(k, depth+1, seen)
		}
	}
	seen := make(map[string]bool)
	for _, root := range roots {
		sb.WriteString(fmt.Sprintf("- %s\n", root))
		walk(root, 1, seen)
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderEnums(s *objc.Snapshot) string {
	if len(s.Enums) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Enums\n\n")
	for _, e := range s.Enums {
		var members []string
		for _, m := range e.Members {
			if m != "" {
				members = append(members, "`"+m+"`")
			}
		}
		sb.WriteString(fmt.Sprintf("- **%s** (`%s`, %s): %s\n", e.Name, e.StorageType, e.FilePath, strings.Join(members, ", ")))
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderClasses(s *objc.Snapshot) string {
	if len(s.Classes) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("## Classes\n\n")
	for _, c := range s.Classes {
		sb.WriteString(fmt.Sprintf("### %s : %s\n\n", c.Name, c.SuperclassName))
		sb.WriteString(fmt.Sprintf("File: `%s`", c.FilePath))
		if len(c.Protocols) > 0 {
			sb.WriteString(fmt.Sprintf("  Protocols: %s", strings.Join(c.Protocols, ", ")))
		}
		sb.WriteString("\n\n")
		if len(c.Properties) == 0 {
			sb.WriteString("_No properties._\n\n")
			continue
		}
		sb.WriteString("| Property | Type | Attributes | Kind |\n")
		sb.WriteString("|----------|------|------------|------|\n")
		for _, p := range c.Properties {
			sb.WriteString(fmt.Sprintf("| `%s` | `%s` | %s | %s |\n", p.Name, p.Type, p.Attributes, kindOf(p)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// kindOf gives a short label for the heuristic classification of p.
func kindOf(p objc.Property) string {
	switch {
	case p.IsArrayOfDictionary():
		return "array<dictionary>"
	case p.IsArrayOfString():
		return "array<string>"
	case p.IsArrayOfNumber():
		return "array<number>"
	case p.IsArray():
		return "array"
	case p.IsDictionary():
		return "dictionary"
	case p.IsString():
		return "string"
	case p.IsNumber():
		return "number"
	case p.IsEnum():
		return "enum"
	case p.IsAssign():
		return "scalar"
	}
	return "object"
}
