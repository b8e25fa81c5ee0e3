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
	"fmt"
	"reflect"
)

// RegisterService registers instance as the singleton of contract T.
// Returns ErrDuplicate if T already has a singleton; the existing instance
// is kept and instance is not adopted. A factory registered for T is not
// affected.
func RegisterService[T any](r *Registry, instance T, ropts ...RegOption) error {
	k := KeyOf[T]()
	if isNil(instance) {
		return fmt.Errorf("%w: %s", ErrNilInstance, k)
	}
	return r.addSingleton(k, instance, ropts)
}

// RegisterServiceNew registers a freshly allocated *C as the singleton of
// contract T. Returns ErrTypeMismatch if *C does not implement T.
func RegisterServiceNew[T, C any](r *Registry, ropts ...RegOption) error {
	k := KeyOf[T]()
	v, ok := any(new(C)).(T)
	if !ok {
		return fmt.Errorf("%w: %s does not implement %s", ErrTypeMismatch, reflect.TypeFor[*C](), k)
	}
	return r.addSingleton(k, v, ropts)
}

// MustRegisterService panics on registration error. Useful from init() blocks.
func MustRegisterService[T any](r *Registry, instance T, ropts ...RegOption) {
	if err := RegisterService(r, instance, ropts...); err != nil {
		panic(err)
	}
}

// UnregisterService removes the singleton of contract T and releases it.
// Returns ErrNotRegistered if T has no singleton.
func UnregisterService[T any](r *Registry) error {
	return r.removeSingleton(KeyOf[T]())
}

// RegisterServiceFactory registers ctor as the transient constructor of
// contract T. Every lookup that reaches the factory calls ctor once.
// Returns ErrNilConstructor for a nil ctor and ErrDuplicate if T already
// has a factory.
func RegisterServiceFactory[T any](r *Registry, ctor func() (T, error), ropts ...RegOption) error {
	k := KeyOf[T]()
	if ctor == nil {
		return fmt.Errorf("%w: %s", ErrNilConstructor, k)
	}
	return r.addFactory(k, func() (any, error) {
		v, err := ctor()
		if err != nil {
			return nil, err
		}
		return v, nil
	}, ropts)
}

// RegisterServiceFactoryNew registers a constructor allocating a new *C on
// every lookup of contract T. Returns ErrTypeMismatch if *C does not
// implement T.
func RegisterServiceFactoryNew[T, C any](r *Registry, ropts ...RegOption) error {
	k := KeyOf[T]()
	if _, ok := any(new(C)).(T); !ok {
		return fmt.Errorf("%w: %s does not implement %s", ErrTypeMismatch, reflect.TypeFor[*C](), k)
	}
	return r.addFactory(k, func() (any, error) {
		return any(new(C)).(T), nil
	}, ropts)
}

// MustRegisterServiceFactory panics on registration error. Useful from init() blocks.
func MustRegisterServiceFactory[T any](r *Registry, ctor func() (T, error), ropts ...RegOption) {
	if err := RegisterServiceFactory(r, ctor, ropts...); err != nil {
		panic(err)
	}
}

// UnregisterServiceFactory removes the constructor of contract T.
// Returns ErrNotRegistered if T has no factory.
func UnregisterServiceFactory[T any](r *Registry) error {
	return r.removeFactory(KeyOf[T]())
}

// Resolve returns the service registered for contract T.
//
// Lookup order:
//   - singleton: the registered instance, identical on every call;
//   - factory: a new instance from the registered constructor;
//   - otherwise ErrNotFound.
//
// A failing, panicking or nil-returning constructor yields ErrConstruction
// wrapping the cause.
func Resolve[T any](r *Registry) (T, error) {
	v, err := r.lookup(KeyOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	// the key is T itself and only T-typed values are stored under it
	return v.(T), nil
}

// Get returns the service registered for contract T, or false when there
// is none or its construction failed. Failures are reported to the logger
// and the observer, never to the caller.
func Get[T any](r *Registry) (T, bool) {
	v, err := Resolve[T](r)
	return v, err == nil
}

// Has reports whether contract T has a singleton and/or a factory.
func Has[T any](r *Registry) (singleton, factory bool) {
	k := KeyOf[T]()
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, singleton = r.singletons.Get(k)
	_, factory = r.factories.Get(k)
	return singleton, factory
}

// isNil reports whether v is nil or a nil reference held in an interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
