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

import "reflect"

// Key identifies a service contract by its Go type.
// Keys are compared by type identity, so two contracts never share a key
// and the same contract always yields an equal key.
//
// Examples:
//
//	registry.KeyOf[Logger]()     // interface contract
//	registry.KeyOf[*Config]()    // concrete pointer contract
type Key struct {
	t reflect.Type
}

// KeyOf returns the key of contract T.
func KeyOf[T any]() Key { return Key{t: reflect.TypeFor[T]()} }

// KeyFor returns the key of an already known reflect.Type.
// A nil type yields the zero key.
func KeyFor(t reflect.Type) Key { return Key{t: t} }

// Type returns the contract type, or nil for the zero key.
func (k Key) Type() reflect.Type { return k.t }

// IsZero reports whether the key names no contract.
func (k Key) IsZero() bool { return k.t == nil }

// String returns the human-readable label of the contract, e.g.
// "demo.Logger" or "*demo.Config".
func (k Key) String() string {
	if k.t == nil {
		return "<empty>"
	}
	return k.t.String()
}
