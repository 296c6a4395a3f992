package schema

import (
	"fmt"
	"sync"
)

type Cache struct {
	mu      sync.RWMutex
	objects map[string]*ObjectDef
}

func NewCache() *Cache {
	return &Cache{
		objects: make(map[string]*ObjectDef),
	}
}

// NewCacheFromObjects returns a cache pre-populated with the given objects.
func NewCacheFromObjects(objs ...*ObjectDef) *Cache {
	c := NewCache()
	for _, obj := range objs {
		c.objects[obj.APIName] = obj
	}
	return c
}

// Load replaces the cached objects. Duplicate API names are rejected.
func (c *Cache) Load(objs ...*ObjectDef) error {
	objects := make(map[string]*ObjectDef, len(objs))
	for _, obj := range objs {
		if obj == nil || obj.APIName == "" {
			return fmt.Errorf("schema cache load: object without api_name")
		}
		if _, dup := objects[obj.APIName]; dup {
			return fmt.Errorf("schema cache load: duplicate object %q", obj.APIName)
		}
		objects[obj.APIName] = obj
	}

	c.mu.Lock()
	c.objects = objects
	c.mu.Unlock()

	return nil
}

func (c *Cache) Get(apiName string) *ObjectDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.objects[apiName]
}

// ObjectCount returns the number of loaded objects.
func (c *Cache) ObjectCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objects)
}
