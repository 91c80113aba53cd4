package settings

import (
	"errors"
	"fmt"
)

// GroupKey identifies a settings group.
type GroupKey string

const (
	GroupWindow   GroupKey = "window"
	GroupTexture  GroupKey = "texture"
	GroupRenderer GroupKey = "renderer"
)

// ErrUnknownSetting is returned for keys and group names that do not exist.
var ErrUnknownSetting = errors.New("unknown setting")

// Group is an ordered set of related settings served under one base path.
type Group struct {
	Key      GroupKey
	Label    string
	BasePath string
	Members  []Descriptor
}

// Member returns the descriptor with the given key.
func (g Group) Member(key Key) (Descriptor, bool) {
	for _, d := range g.Members {
		if d.Key == key {
			return d, true
		}
	}
	return Descriptor{}, false
}

// PathOf returns the endpoint path of a member, relative to the engine URL.
func (g Group) PathOf(d Descriptor) string {
	return g.BasePath + d.Path
}

// ApplyPath returns the endpoint that commits deferred settings.
func (g Group) ApplyPath() string {
	return g.BasePath + "apply"
}

// HasDeferred reports whether any member needs an explicit apply.
func (g Group) HasDeferred() bool {
	for _, d := range g.Members {
		if d.Policy == Deferred {
			return true
		}
	}
	return false
}

// Groups returns every group in panel order.
func Groups() []Group {
	return []Group{Window, Texture, Renderer}
}

// FindGroup returns the group with the given key.
func FindGroup(key GroupKey) (Group, error) {
	for _, g := range Groups() {
		if g.Key == key {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("group %q: %w", key, ErrUnknownSetting)
}

// Lookup returns a descriptor and the group it belongs to.
func Lookup(key Key) (Group, Descriptor, error) {
	for _, g := range Groups() {
		if d, ok := g.Member(key); ok {
			return g, d, nil
		}
	}
	return Group{}, Descriptor{}, fmt.Errorf("%q: %w", key, ErrUnknownSetting)
}

// Keys returns every setting key in panel order.
func Keys() []Key {
	var keys []Key
	for _, g := range Groups() {
		for _, d := range g.Members {
			keys = append(keys, d.Key)
		}
	}
	return keys
}
