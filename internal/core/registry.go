package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]ResourceDefinition)
	registryMu sync.RWMutex
)

// Register adds a resource definition to the registry.
// Panics if a resource with the same key is already registered.
func Register(def ResourceDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("resource already registered: %s", def.Info.Key))
	}

	if def.Table == "" {
		def.Table = def.Info.Key
	}
	if def.Info.Path == "" {
		def.Info.Path = "/dashboard/" + def.Info.Key
	}

	registry[def.Info.Key] = def
}

// Get returns a resource definition by key.
// Returns false if not found.
func Get(key string) (ResourceDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered resource definitions.
// Sorted by group then by key for consistent ordering.
func All() []ResourceDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ResourceDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// ByGroup returns all resource definitions for a specific group.
// Sorted by key for consistent ordering.
func ByGroup(group string) []ResourceDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []ResourceDefinition
	for _, def := range registry {
		if def.Info.Group == group {
			result = append(result, def)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// Groups returns all unique group names.
// Sorted alphabetically.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range registry {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// Registered returns the number of registered resources.
func Registered() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered resources.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]ResourceDefinition)
}
