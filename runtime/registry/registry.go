/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"dirpx.dev/locator/runtime/release"
)

// Options control registry behavior.
type Options struct {
	// Logger receives diagnostics. If nil, diagnostics are discarded.
	Logger *slog.Logger

	// Observer, when set, receives every Event synchronously. It is never
	// called with the registry lock held, so it may call back into the registry.
	Observer func(Event)

	// CloseOnRelease, when true, closes singleton instances implementing
	// io.Closer or release.Closer once the registry drops them. An instance
	// is closed at most once per release and never while another contract
	// still holds it.
	CloseOnRelease bool

	// ReleaseTimeout bounds the context handed to closers released by
	// UnregisterService and Clear. Zero means no deadline. Close uses the
	// caller's context instead. Closers that ignore their context are
	// still waited for.
	ReleaseTimeout time.Duration

	// ID names the registry in logs. If empty, a random UUID is used.
	ID string
}

// Option modifies Options.
type Option func(*Options)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }

// WithObserver sets the event observer.
func WithObserver(fn func(Event)) Option { return func(o *Options) { o.Observer = fn } }

// WithCloseOnRelease closes released singletons that know how to close themselves.
func WithCloseOnRelease() Option { return func(o *Options) { o.CloseOnRelease = true } }

// WithReleaseTimeout bounds releases triggered by UnregisterService and Clear.
func WithReleaseTimeout(d time.Duration) Option {
	return func(o *Options) { o.ReleaseTimeout = d }
}

// WithID sets the registry ID used in logs.
func WithID(id string) Option { return func(o *Options) { o.ID = id } }

// RegOption modifies per-entry registration parameters.
type RegOption func(*regOpts)

type regOpts struct {
	doc string
}

// WithDoc attaches a human-readable note to the entry.
func WithDoc(doc string) RegOption { return func(o *regOpts) { o.doc = doc } }

// Entry describes a live registration.
type Entry struct {
	Key      Key
	Label    string
	Lifetime Lifetime
	Doc      string // optional human-readable description
}

type singletonEntry struct {
	label    string
	doc      string
	instance any
}

type factoryEntry struct {
	label     string
	doc       string
	construct func() (any, error)
}

// Registry maps service contracts to singleton instances and to transient
// constructors. Each table keeps its entries in registration order, and the
// labels reported by ServicesList and ServicesFactoryList are read from the
// entries themselves.
//
// It is safe for concurrent use. Constructors, observers and closers are
// never invoked while the internal lock is held.
type Registry struct {
	mu         sync.RWMutex
	singletons *orderedmap.OrderedMap[Key, singletonEntry]
	factories  *orderedmap.OrderedMap[Key, factoryEntry]

	opt    Options
	log    *slog.Logger
	sealed atomic.Bool // when true, further registrations fail
	closed atomic.Bool
}

// New creates an empty registry with the provided options.
func New(opts ...Option) *Registry {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		singletons: orderedmap.New[Key, singletonEntry](),
		factories:  orderedmap.New[Key, factoryEntry](),
		opt:        o,
		log:        logger.With("component", "registry", "registry_id", o.ID),
	}
}

var (
	// ErrDuplicate indicates the contract already has an entry in the targeted table.
	ErrDuplicate = errors.New("registry: already registered")
	// ErrNotRegistered indicates an unregistration of a contract absent from the targeted table.
	ErrNotRegistered = errors.New("registry: not registered")
	// ErrNotFound indicates a lookup of a contract absent from both tables.
	ErrNotFound = errors.New("registry: service not found")
	// ErrConstruction indicates a registered constructor failed to produce an instance.
	ErrConstruction = errors.New("registry: construction failed")
	// ErrTypeMismatch indicates a value that does not satisfy its contract.
	ErrTypeMismatch = errors.New("registry: type mismatch")
	// ErrNilInstance indicates a nil singleton instance.
	ErrNilInstance = errors.New("registry: nil instance")
	// ErrNilConstructor indicates a nil factory constructor.
	ErrNilConstructor = errors.New("registry: nil constructor")
	// ErrNoServices indicates a listing of an empty table.
	ErrNoServices = errors.New("registry: no services registered")
	// ErrSealed indicates an attempt to register in a sealed registry.
	ErrSealed = errors.New("registry: sealed registry")
	// ErrClosed indicates an attempt to register in a closed registry.
	ErrClosed = errors.New("registry: closed registry")
)

// ID returns the registry ID used in logs.
func (r *Registry) ID() string { return r.opt.ID }

// Sealed reports whether the registry is sealed (no further registrations allowed).
func (r *Registry) Sealed() bool { return r.sealed.Load() }

// Seal prevents further registrations. Lookups and unregistrations keep working.
// It is idempotent and safe for concurrent use.
// Returns true if this call changed the state from unsealed to sealed.
func (r *Registry) Seal() bool { return !r.sealed.Swap(true) }

// writable returns the reason registrations are refused, if any.
// Callers hold r.mu so a concurrent Close cannot slip between check and insert.
func (r *Registry) writable() error {
	if r.closed.Load() {
		return ErrClosed
	}
	if r.sealed.Load() {
		return ErrSealed
	}
	return nil
}

// addSingleton stores v as the singleton of k.
func (r *Registry) addSingleton(k Key, v any, ropts []RegOption) error {
	var o regOpts
	for _, fn := range ropts {
		fn(&o)
	}

	r.mu.Lock()
	if err := r.writable(); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", err, k)
	}
	if _, exists := r.singletons.Get(k); exists {
		r.mu.Unlock()
		err := fmt.Errorf("%w: singleton %s", ErrDuplicate, k)
		r.report(Event{Kind: EventDuplicate, Key: k, Lifetime: Singleton, Err: err})
		return err
	}
	r.singletons.Set(k, singletonEntry{label: k.String(), doc: o.doc, instance: v})
	r.mu.Unlock()

	r.report(Event{Kind: EventRegistered, Key: k, Lifetime: Singleton})
	return nil
}

// removeSingleton drops the singleton of k and releases it.
func (r *Registry) removeSingleton(k Key) error {
	r.mu.Lock()
	e, ok := r.singletons.Delete(k)
	shared := ok && r.holdsLocked(e.instance)
	r.mu.Unlock()

	if !ok {
		err := fmt.Errorf("%w: singleton %s", ErrNotRegistered, k)
		r.report(Event{Kind: EventNotRegistered, Key: k, Lifetime: Singleton, Err: err})
		return err
	}
	r.report(Event{Kind: EventUnregistered, Key: k, Lifetime: Singleton})
	if !shared {
		r.releaseAndReport([]singletonEntry{e})
	}
	return nil
}

// addFactory stores fn as the constructor of k.
func (r *Registry) addFactory(k Key, fn func() (any, error), ropts []RegOption) error {
	var o regOpts
	for _, f := range ropts {
		f(&o)
	}

	r.mu.Lock()
	if err := r.writable(); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", err, k)
	}
	if _, exists := r.factories.Get(k); exists {
		r.mu.Unlock()
		err := fmt.Errorf("%w: factory %s", ErrDuplicate, k)
		r.report(Event{Kind: EventDuplicate, Key: k, Lifetime: Transient, Err: err})
		return err
	}
	r.factories.Set(k, factoryEntry{label: k.String(), doc: o.doc, construct: fn})
	r.mu.Unlock()

	r.report(Event{Kind: EventRegistered, Key: k, Lifetime: Transient})
	return nil
}

// removeFactory drops the constructor of k.
func (r *Registry) removeFactory(k Key) error {
	r.mu.Lock()
	_, ok := r.factories.Delete(k)
	r.mu.Unlock()

	if !ok {
		err := fmt.Errorf("%w: factory %s", ErrNotRegistered, k)
		r.report(Event{Kind: EventNotRegistered, Key: k, Lifetime: Transient, Err: err})
		return err
	}
	r.report(Event{Kind: EventUnregistered, Key: k, Lifetime: Transient})
	return nil
}

// lookup resolves k: the singleton wins, then the factory is invoked.
// Returns ErrNotFound when neither table has k.
func (r *Registry) lookup(k Key) (any, error) {
	r.mu.RLock()
	if e, ok := r.singletons.Get(k); ok {
		r.mu.RUnlock()
		return e.instance, nil
	}
	f, ok := r.factories.Get(k)
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, k)
	}

	v, err := construct(f.construct)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrConstruction, k, err)
		r.report(Event{Kind: EventConstructionFailed, Key: k, Lifetime: Transient, Err: err})
		return nil, err
	}
	return v, nil
}

// construct invokes fn, converting a panic or a nil product into an error.
func construct(fn func() (any, error)) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, fmt.Errorf("constructor panicked: %v", rec)
		}
	}()
	v, err = fn()
	if err == nil && isNil(v) {
		err = errors.New("constructor returned nil")
	}
	return v, err
}

// ServicesList returns the labels of the singleton registrations in
// registration order. Returns ErrNoServices when there are none.
func (r *Registry) ServicesList() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.singletons.Len() == 0 {
		return nil, ErrNoServices
	}
	labels := make([]string, 0, r.singletons.Len())
	for p := r.singletons.Oldest(); p != nil; p = p.Next() {
		labels = append(labels, p.Value.label)
	}
	return labels, nil
}

// ServicesFactoryList returns the labels of the factory registrations in
// registration order. Returns ErrNoServices when there are none.
func (r *Registry) ServicesFactoryList() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.factories.Len() == 0 {
		return nil, ErrNoServices
	}
	labels := make([]string, 0, r.factories.Len())
	for p := r.factories.Oldest(); p != nil; p = p.Next() {
		labels = append(labels, p.Value.label)
	}
	return labels, nil
}

// Entries returns a snapshot of all registrations: singletons first, then
// factories, each in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Entry, 0, r.singletons.Len()+r.factories.Len())
	for p := r.singletons.Oldest(); p != nil; p = p.Next() {
		items = append(items, Entry{Key: p.Key, Label: p.Value.label, Lifetime: Singleton, Doc: p.Value.doc})
	}
	for p := r.factories.Oldest(); p != nil; p = p.Next() {
		items = append(items, Entry{Key: p.Key, Label: p.Value.label, Lifetime: Transient, Doc: p.Value.doc})
	}
	return items
}

// Len returns the number of singleton and factory registrations.
func (r *Registry) Len() (singletons, factories int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.singletons.Len(), r.factories.Len()
}

// Clear removes every singleton and factory registration and releases the
// singletons. It is idempotent.
func (r *Registry) Clear() {
	r.releaseAndReport(r.drain())
}

// Close tears the registry down: it seals it, clears both tables, and
// releases the singletons, returning the joined release errors.
// Registrations after Close fail with ErrClosed. A second Close returns nil.
func (r *Registry) Close(ctx context.Context) error {
	if r.closed.Swap(true) {
		return nil
	}
	r.Seal()
	return r.release(ctx, r.drain())
}

// drain empties both tables and returns the dropped singletons in
// registration order.
func (r *Registry) drain() []singletonEntry {
	r.mu.Lock()
	dropped := make([]singletonEntry, 0, r.singletons.Len())
	for p := r.singletons.Oldest(); p != nil; p = p.Next() {
		dropped = append(dropped, p.Value)
	}
	r.singletons = orderedmap.New[Key, singletonEntry]()
	r.factories = orderedmap.New[Key, factoryEntry]()
	r.mu.Unlock()

	r.report(Event{Kind: EventCleared})
	return dropped
}

// holdsLocked reports whether a live singleton entry still holds v.
// Callers hold r.mu.
func (r *Registry) holdsLocked(v any) bool {
	for p := r.singletons.Oldest(); p != nil; p = p.Next() {
		if sameInstance(p.Value.instance, v) {
			return true
		}
	}
	return false
}

// sameInstance reports whether a and b are the same instance.
// Values that cannot be compared are never the same.
func sameInstance(a, b any) bool {
	return reflect.ValueOf(a).Comparable() && a == b
}

// release closes the dropped singletons when CloseOnRelease is set.
// An instance held under several contracts is closed once.
func (r *Registry) release(ctx context.Context, dropped []singletonEntry) error {
	if !r.opt.CloseOnRelease || len(dropped) == 0 {
		return nil
	}
	var (
		g    release.Group
		errs []error
		seen []any
	)
	for i, e := range dropped {
		if slices.ContainsFunc(seen, func(v any) bool { return sameInstance(v, e.instance) }) {
			continue
		}
		seen = append(seen, e.instance)
		// labels are not unique across packages, the position is
		name := fmt.Sprintf("%s#%d", e.label, i)
		if _, err := g.AddValue(name, e.instance); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	errs = append(errs, g.Close(ctx))
	return errors.Join(errs...)
}

// releaseAndReport releases dropped singletons under ReleaseTimeout and
// reports a failure instead of returning it.
func (r *Registry) releaseAndReport(dropped []singletonEntry) {
	ctx := context.Background()
	if r.opt.ReleaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opt.ReleaseTimeout)
		defer cancel()
	}
	if err := r.release(ctx, dropped); err != nil {
		r.report(Event{Kind: EventReleaseFailed, Lifetime: Singleton, Err: err})
	}
}

// report logs e and forwards it to the observer, if any.
func (r *Registry) report(e Event) {
	r.log.Log(context.Background(), e.level(), e.Kind.String(), e.attrs()...)
	if r.opt.Observer != nil {
		r.opt.Observer(e)
	}
}
