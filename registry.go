package workflow

import (
	"sort"
	"sync"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
)

// Registry holds one Definition per kind. It is write-once at startup: all
// Register calls happen during process wiring, after which the registry is
// only read. Reads after wiring therefore need no coordination; the mutex
// exists to keep registration itself safe.
type Registry struct {
	mu   sync.RWMutex
	defs map[Kind]Definition
}

func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[Kind]Definition),
	}
}

// Register validates d and stores it under kind. It fails with
// ErrKindAlreadyRegistered on duplicate kinds and with ErrInvalidDefinition
// when the definition is internally inconsistent.
func (r *Registry) Register(kind Kind, d Definition) error {
	if err := d.Validate(kind); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[kind]; ok {
		return errors.Wrap(ErrKindAlreadyRegistered, "", j.KV("kind", kind))
	}

	r.defs[kind] = d
	return nil
}

// MustRegister is Register for static wiring; it panics on failure. Intended
// for the built-in definition table and main functions where a bad definition
// is fatal at startup.
func (r *Registry) MustRegister(kind Kind, d Definition) {
	if err := r.Register(kind, d); err != nil {
		panic(err)
	}
}

// Get returns the definition for kind or fails with ErrUnknownKind.
func (r *Registry) Get(kind Kind) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.defs[kind]
	if !ok {
		return Definition{}, errors.Wrap(ErrUnknownKind, "", j.KV("kind", kind))
	}

	return d, nil
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.defs))
	for k := range r.defs {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
