package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/objchdr/internal/objc"
	"github.com/dejo1307/objchdr/internal/scanner"
)

func TestCache_MissBeforeSet(t *testing.T) {
	c := New()
	_, ok := c.Class("Foo")
	assert.False(t, ok)
	_, ok = c.Enum("Color")
	assert.False(t, ok)
}

func TestCache_SetThenGetReturnsSameValue(t *testing.T) {
	c := New()
	cls := objc.NewClass("Foo.h", "Foo", "NSObject")
	e := objc.NewEnum("Color.h", "Color", "NSInteger", []string{"Red"})

	c.SetClass("Foo", cls)
	c.SetEnum("Color", e)

	for i := 0; i < 3; i++ {
		got, ok := c.Class("Foo")
		require.True(t, ok)
		assert.Same(t, cls, got)

		gotEnum, ok := c.Enum("Color")
		require.True(t, ok)
		assert.Same(t, e, gotEnum)
	}
}

func TestCache_ClassAndEnumNamespacesIndependent(t *testing.T) {
	c := New()
	c.SetClass("Shared", objc.NewClass("a.h", "Shared", "NSObject"))
	_, ok := c.Enum("Shared")
	assert.False(t, ok)
}

func TestCache_SetOverwrites(t *testing.T) {
	c := New()
	first := objc.NewClass("a.h", "Foo", "NSObject")
	second := objc.NewClass("b.h", "Foo", "UIView")
	c.SetClass("Foo", first)
	c.SetClass("Foo", second)

	got, _ := c.Class("Foo")
	assert.Same(t, second, got)
}

func TestCache_AddResultFirstSeenWins(t *testing.T) {
	c := New()
	a := scanner.Scan("a.h", "@interface Foo : NSObject\n@end\nNS_ENUM(NSInteger, Kind) { A };")
	b := scanner.Scan("b.h", "@interface Foo : UIView\n@end\n@interface Bar : NSObject\n@end\nNS_ENUM(NSInteger, Kind) { B };")

	assert.Equal(t, 2, c.AddResult(a))
	assert.Equal(t, 1, c.AddResult(b))

	foo, ok := c.Class("Foo")
	require.True(t, ok)
	assert.Equal(t, "a.h", foo.FilePath)
	assert.Equal(t, "NSObject", foo.SuperclassName)

	kind, ok := c.Enum("Kind")
	require.True(t, ok)
	assert.Equal(t, []string{"A"}, kind.Members)

	nc, ne := c.Len()
	assert.Equal(t, 2, nc)
	assert.Equal(t, 1, ne)
}

func TestCache_SortedListingAndClear(t *testing.T) {
	c := New()
	for _, n := range []string{"Zed", "Alpha", "Mid"} {
		c.SetClass(n, objc.NewClass("x.h", n, "NSObject"))
	}
	c.SetEnum("E2", objc.NewEnum("x.h", "E2", "NSInteger", nil))
	c.SetEnum("E1", objc.NewEnum("x.h", "E1", "NSInteger", nil))

	var names []string
	for _, cls := range c.Classes() {
		names = append(names, cls.Name)
	}
	assert.Equal(t, []string{"Alpha", "Mid", "Zed"}, names)
	assert.Equal(t, "E1", c.Enums()[0].Name)

	c.Clear()
	nc, ne := c.Len()
	assert.Zero(t, nc)
	assert.Zero(t, ne)
}

func TestCache_ConcurrentDistinctWritesAllKept(t *testing.T) {
	c := New()
	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				name := fmt.Sprintf("C%d_%d", w, i)
				c.SetClass(name, objc.NewClass("x.h", name, "NSObject"))
				c.SetEnum(name, objc.NewEnum("x.h", name, "NSInteger", nil))
				c.Class(name)
			}
		}(w)
	}
	wg.Wait()

	nc, ne := c.Len()
	assert.Equal(t, workers*perWorker, nc)
	assert.Equal(t, workers*perWorker, ne)
	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			_, ok := c.Class(fmt.Sprintf("C%d_%d", w, i))
			require.True(t, ok)
		}
	}
}
