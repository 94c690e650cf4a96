package cache

import (
	"sort"
	"sync"

	"github.com/dejo1307/objchdr/internal/objc"
	"github.com/dejo1307/objchdr/internal/scanner"
)

// Cache memoizes parsed classes and enums by name. It is safe for concurrent
// use. Entries are never evicted.
type Cache struct {
	mu      sync.RWMutex
	classes map[string]*objc.Class
	enums   map[string]*objc.Enum
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		classes: make(map[string]*objc.Class),
		enums:   make(map[string]*objc.Enum),
	}
}

// Class returns the class stored under name.
func (c *Cache) Class(name string) (*objc.Class, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cls, ok := c.classes[name]
	return cls, ok
}

// SetClass stores cls under name, replacing any previous entry.
func (c *Cache) SetClass(name string, cls *objc.Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes[name] = cls
}

// Enum returns the enum stored under name.
func (c *Cache) Enum(name string) (*objc.Enum, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.enums[name]
	return e, ok
}

// SetEnum stores e under name, replacing any previous entry.
func (c *Cache) SetEnum(name string, e *objc.Enum) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enums[name] = e
}

// AddResult stores every class and enum of a scan under its own name.
// A name that is already cached keeps its first definition, so the same
// class declared in two headers resolves to whichever was added first.
// It returns how many entries were newly stored.
func (c *Cache) AddResult(res scanner.Result) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	added := 0
	for _, cls := range res.Classes {
		if _, ok := c.classes[cls.Name]; ok {
			continue
		}
		c.classes[cls.Name] = cls
		added++
	}
	for _, e := range res.Enums {
		if _, ok := c.enums[e.Name]; ok {
			continue
		}
		c.enums[e.Name] = e
		added++
	}
	return added
}

// Len returns the number of cached classes and enums.
func (c *Cache) Len() (classes, enums int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.classes), len(c.enums)
}

// Classes returns all cached classes sorted by name.
func (c *Cache) Classes() []*objc.Class {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*objc.Class, 0, len(c.classes))
	for _, cls := range c.classes {
		result = append(result, cls)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Enums returns all cached enums sorted by name.
func (c *Cache) Enums() []*objc.Enum {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*objc.Enum, 0, len(c.enums))
	for _, e := range c.enums {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes = make(map[string]*objc.Class)
	c.enums = make(map[string]*objc.Enum)
}
