// Package settings persists small per-user string values, such as the paste
// template slots, that must survive restarts of clipmunk.
//
// Two stores are provided:
//
//	SQLiteStore  durable file store, the default for "clipmunk serve"
//	MemoryStore  process-local store for tests and --ephemeral runs
package settings

import (
	"errors"
	"strconv"
)

// SlotCount is the number of template slots exposed as paste services.
const SlotCount = 3

// TemplateKeyPrefix prefixes the slot index in template keys.
const TemplateKeyPrefix = "paste_template_"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("settings: store closed")

// TemplateKey returns the settings key for the template slot at index.
func TemplateKey(index int) string {
	return TemplateKeyPrefix + strconv.Itoa(index)
}

// Store is a flat string key-value store.
type Store interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Sync forces previously set values to durable storage.
	Sync() error

	// Keys returns every stored key in ascending order.
	Keys() ([]string, error)

	Close() error
}

// Template returns the content of the template slot at index. An absent key
// reads as "".
func Template(s Store, index int) (string, error) {
	v, _, err := s.Get(TemplateKey(index))
	return v, err
}
