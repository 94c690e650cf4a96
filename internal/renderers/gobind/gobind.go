// Package gobind renders the extracted classes and enums as Go source: one
// struct per class and one named integer type with a const block per enum.
package gobind

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/dejo1307/objchdr/internal/objc"
)

// Renderer generates Go bindings with jennifer.
type Renderer struct {
	pkg      string
	fileName string
}

// New creates a bindings renderer writing package pkg into fileName.
func New(pkg, fileName string) *Renderer {
	return &Renderer{pkg: pkg, fileName: fileName}
}

func (r *Renderer) Name() string {
	return "gobind"
}

func (r *Renderer) Render(ctx context.Context, snapshot *objc.Snapshot) ([]objc.Artifact, error) {
	src, err := r.Generate(snapshot.Classes, snapshot.Enums)
	if err != nil {
		return nil, err
	}
	return []objc.Artifact{{Name: r.fileName, Content: src, Type: "text/x-go"}}, nil
}

// Generate returns formatted Go source for the given classes and enums.
func (r *Renderer) Generate(classes []*objc.Class, enums []*objc.Enum) ([]byte, error) {
	idx := newIndex(classes, enums)

	f := jen.NewFile(r.pkg)
	f.HeaderComment("Code generated by objchdr. DO NOT EDIT.")

	sortedE := sortedEnums(enums)
	var sortedC []*objc.Class
	for _, c := range sortedClasses(classes) {
		if _, clash := idx.enums[c.Name]; !clash {
			sortedC = append(sortedC, c)
		}
	}

	// Type names are declared before any constant can claim them.
	sc := newScope()
	for _, e := range sortedE {
		sc.declare(e.Name)
	}
	for _, c := range sortedC {
		sc.declare(c.Name)
	}

	for _, e := range sortedE {
		writeEnum(f, e, sc)
	}
	for _, c := range sortedC {
		writeClass(f, c, idx)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering go bindings: %w", err)
	}
	return buf.Bytes(), nil
}

func writeClass(f *jen.File, c *objc.Class, idx *index) {
	comment := fmt.Sprintf("%s mirrors the Objective-C class %s declared in %s.", c.Name, c.Name, c.FilePath)
	if c.SuperclassName != "" {
		comment = fmt.Sprintf("%s mirrors the Objective-C class %s : %s declared in %s.",
			c.Name, c.Name, c.SuperclassName, c.FilePath)
	}
	f.Comment(comment)

	f.Type().Id(c.Name).StructFunc(func(g *jen.Group) {
		used := map[string]bool{}
		if idx.embeddable(c) {
			g.Id(c.SuperclassName)
			used[c.SuperclassName] = true
		}
		for _, p := range c.Properties {
			field := exportName(p.Name)
			if used[field] {
				continue
			}
			used[field] = true
			stmt := g.Id(field).Add(idx.goType(p)).Tag(map[string]string{"json": p.Name})
			if p.Type != "" {
				stmt.Comment(p.Type)
			}
		}
	})
	f.Line()
}

// exportName turns an Objective-C property name into an exported Go
// identifier: leading underscores are dropped and the first letter is
// upper-cased.
func exportName(name string) string {
	name = strings.TrimLeft(name, "_")
	if name == "" {
		return "X"
	}
	r := []rune(name)
	if !unicode.IsLetter(r[0]) {
		return "X" + name
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func sortedClasses(classes []*objc.Class) []*objc.Class {
	out := make([]*objc.Class, 0, len(classes))
	seen := map[string]bool{}
	for _, c := range classes {
		if c == nil || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedEnums(enums []*objc.Enum) []*objc.Enum {
	out := make([]*objc.Enum, 0, len(enums))
	seen := map[string]bool{}
	for _, e := range enums {
		if e == nil || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
