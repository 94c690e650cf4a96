package locator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestFindTypeFile_ByFileName(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Models/User+Extras.h": "@interface User (Extras)\n@end\n",
		"Models/User.h":        "@interface User : NSObject\n@end\n",
		"Models/Other.h":       "@interface Other : User\n@end\n",
	})

	l := New(false, nil)
	path, ok, err := l.FindTypeFile(context.Background(), root, "User")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "Models/User.h"), path)
}

func TestFindTypeFile_ByInterfaceDeclaration(t *testing.T) {
	root := writeTree(t, map[string]string{
		"All.h":      "@interface Account : NSObject\n@end\n@interface Session : NSObject\n@end\n",
		"Subclass.h": "@interface Admin : Session\n@end\n",
		"notes.txt":  "@interface Session : NSObject",
	})

	l := New(false, nil)
	path, ok, err := l.FindTypeFile(context.Background(), root, "Session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "All.h"), path)
}

func TestFindTypeFile_NotFound(t *testing.T) {
	root := writeTree(t, map[string]string{"A.h": "@interface A : NSObject\n@end\n"})

	l := New(false, nil)
	path, ok, err := l.FindTypeFile(context.Background(), root, "Missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, path)

	_, ok, err = l.FindTypeFile(context.Background(), root, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindTypeFile_SkipFunc(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Pods/Lib/Widget.h": "@interface Widget : NSObject\n@end\n",
	})

	skip := func(rel string, isDir bool) bool {
		return strings.HasPrefix(filepath.ToSlash(rel), "Pods")
	}
	_, ok, err := New(false, skip).FindTypeFile(context.Background(), root, "Widget")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindTypeFile_MissingRoot(t *testing.T) {
	_, _, err := New(false, nil).FindTypeFile(context.Background(), filepath.Join(t.TempDir(), "nope"), "X")
	require.Error(t, err)
}

func TestFindTypeFile_CanceledContext(t *testing.T) {
	root := writeTree(t, map[string]string{"A.h": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(false, nil).FindTypeFile(ctx, root, "A")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFindTypeFile_ExternalTools(t *testing.T) {
	var calls []string
	l := New(true, nil)
	l.lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	l.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, name)
		switch name {
		case "fd":
			assert.Contains(t, args, `^Feed\.h$`)
			return []byte("/src/Feed+Private.h\n"), nil
		case "rg":
			return []byte("/src/b.h\x00@interface FeedCell : UITableViewCell\n" +
				"/src/z.h\x00@interface Feed : NSObject\n" +
				"/src/a.h\x00@interface Feed : NSObject <NSCopying>\n"), nil
		}
		return nil, errors.New("unexpected command")
	}

	path, ok, err := l.FindTypeFile(context.Background(), "/src", "Feed")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/src/a.h", path)
	assert.Equal(t, []string{"fd", "rg"}, calls)
}

func TestFindTypeFile_ExternalToolsMissingFallsBack(t *testing.T) {
	root := writeTree(t, map[string]string{"Deep/Feed.h": ""})

	l := New(true, nil)
	l.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	l.run = func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("external tool must not run when missing")
		return nil, nil
	}

	path, ok, err := l.FindTypeFile(context.Background(), root, "Feed")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "Deep/Feed.h"), path)
}

func TestFindTypeFile_FdErrorFallsBackToWalk(t *testing.T) {
	root := writeTree(t, map[string]string{"Feed.h": ""})

	l := New(true, nil)
	l.lookPath = func(file string) (string, error) {
		if file == "fd" {
			return "/usr/bin/fd", nil
		}
		return "", errors.New("not found")
	}
	l.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("fd: crashed")
	}

	path, ok, err := l.FindTypeFile(context.Background(), root, "Feed")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "Feed.h"), path)
}

func TestFindTypeFile_ExternalToolsHonorSkip(t *testing.T) {
	skip := func(rel string, isDir bool) bool {
		return strings.HasPrefix(filepath.ToSlash(rel), "Pods/")
	}
	l := New(true, skip)
	l.lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	l.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		switch name {
		case "fd":
			return []byte("/src/Pods/Lib/Feed.h\n"), nil
		case "rg":
			return []byte("/src/Pods/Lib/Feed.h\x00@interface Feed : NSObject\n" +
				"/src/Sources/Models.h\x00@interface Feed : NSObject\n"), nil
		}
		return nil, errors.New("unexpected command")
	}

	path, ok, err := l.FindTypeFile(context.Background(), "/src", "Feed")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/src/Sources/Models.h", path)
}
