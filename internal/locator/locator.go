// Package locator finds the header file that declares a given type.
//
// It prefers the fd and rg command-line tools when they are installed and
// falls back to walking the tree itself.
package locator

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// SkipFunc reports whether a path relative to the search root should be skipped.
type SkipFunc func(relPath string, isDir bool) bool

// Locator resolves a type name to the header that declares it.
type Locator struct {
	useExternal bool
	skip        SkipFunc

	// Swappable for tests.
	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New creates a Locator. When useExternal is false, fd and rg are never run.
// skip may be nil.
func New(useExternal bool, skip SkipFunc) *Locator {
	if skip == nil {
		skip = func(string, bool) bool { return false }
	}
	return &Locator{
		useExternal: useExternal,
		skip:        skip,
		lookPath:    exec.LookPath,
		run:         runCommand,
	}
}

// FindTypeFile returns the header declaring typeName under root.
//
// A header named "<typeName>.h" wins; category headers ("Foo+Bar.h") are
// never chosen by name. Otherwise the first header containing an
// "@interface <typeName>" line is returned. A type that cannot be found is
// reported as ("", false, nil); errors are reserved for I/O and tool failures.
func (l *Locator) FindTypeFile(ctx context.Context, root, typeName string) (string, bool, error) {
	if typeName == "" {
		return "", false, nil
	}

	path, ok, err := l.findByFileName(ctx, root, typeName)
	if err != nil || ok {
		return path, ok, err
	}
	return l.findByInterface(ctx, root, typeName)
}

func (l *Locator) findByFileName(ctx context.Context, root, typeName string) (string, bool, error) {
	if l.hasTool("fd") {
		pattern := "^" + regexp.QuoteMeta(typeName) + `\.h$`
		out, err := l.run(ctx, "fd", "--type", "file", "--extension", "h", pattern, root)
		if err == nil {
			var candidates []string
			for _, line := range strings.Split(string(out), "\n") {
				line = strings.TrimSpace(line)
				if line == "" || strings.Contains(filepath.Base(line), "+") || l.skipped(root, line) {
					continue
				}
				candidates = append(candidates, line)
			}
			return first(candidates)
		}
		log.Printf("[locator] fd failed, walking %s instead: %v", root, err)
	}

	want := typeName + ".h"
	var candidates []string
	err := l.walkHeaders(ctx, root, func(path string) error {
		if filepath.Base(path) == want {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return first(candidates)
}

func (l *Locator) findByInterface(ctx context.Context, root, typeName string) (string, bool, error) {
	declRe := regexp.MustCompile(`@interface\s+` + regexp.QuoteMeta(typeName) + `\b`)

	if l.hasTool("rg") {
		out, err := l.run(ctx, "rg", "--null", "--no-heading", "--with-filename",
			"--fixed-strings", typeName, "-g", "*.h", root)
		if err == nil {
			var candidates []string
			for _, line := range strings.Split(string(out), "\n") {
				path, text, ok := strings.Cut(line, "\x00")
				if ok && declRe.MatchString(text) && !l.skipped(root, path) {
					candidates = append(candidates, path)
				}
			}
			return first(candidates)
		}
		if isNoMatch(err) {
			return "", false, nil
		}
		log.Printf("[locator] rg failed, scanning %s instead: %v", root, err)
	}

	var candidates []string
	err := l.walkHeaders(ctx, root, func(path string) error {
		found, err := fileMatches(path, declRe)
		if err != nil {
			log.Printf("[locator] error reading %s: %v", path, err)
			return nil
		}
		if found {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return first(candidates)
}

// walkHeaders calls fn for every .h file under root, honoring the skip func.
func (l *Locator) walkHeaders(ctx context.Context, root string, fn func(path string) error) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel != "." && l.skip(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".h") {
			return nil
		}
		return fn(path)
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}
	return nil
}

// skipped applies the skip func to a path reported by an external tool.
func (l *Locator) skipped(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return l.skip(rel, false)
}

func (l *Locator) hasTool(name string) bool {
	if !l.useExternal {
		return false
	}
	_, err := l.lookPath(name)
	return err == nil
}

func fileMatches(path string, re *regexp.Regexp) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)
	for scanner.Scan() {
		if re.Match(scanner.Bytes()) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// first picks the lexically smallest candidate so results do not depend on
// tool or filesystem ordering.
func first(candidates []string) (string, bool, error) {
	if len(candidates) == 0 {
		return "", false, nil
	}
	sort.Strings(candidates)
	return candidates[0], true, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// isNoMatch reports whether err is rg's "nothing found" exit status.
func isNoMatch(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == 1
}
