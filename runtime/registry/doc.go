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

// Package registry provides a type-indexed service locator.
//
// Application code registers implementations of service contracts (usually
// interfaces) and later retrieves them by contract type, without knowing the
// concrete type behind them. Two lifetimes are supported:
//   - Singleton: one shared instance returned on every request.
//   - Transient: a constructor invoked on every request.
//
// Design goals:
//   - Collision-free keys: contracts are keyed by reflect.Type identity.
//   - Deterministic listings: each table keeps registration order, and labels
//     live next to their entries.
//   - Safe by default: duplicate registrations are rejected, never replaced.
//   - Structured failures: operations return sentinel errors; diagnostics go
//     to an optional slog.Logger and event observer.
//   - Freeze option: Seal() prevents further registrations once the process
//     is fully configured.
//
// Typical usage:
//
//	r := registry.New(registry.WithLogger(logger))
//	registry.MustRegisterService[Logger](r, newConsoleLogger(os.Stdout))
//	registry.MustRegisterServiceFactory(r, func() (Config, error) { return loadConfig() })
//
//	log, ok := registry.Get[Logger](r) // same instance every call
//	cfg, err := registry.Resolve[Config](r) // new instance every call
package registry
