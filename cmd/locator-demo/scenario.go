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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"dirpx.dev/locator/internal/listing"
	"dirpx.dev/locator/runtime/registry"
)

// runScenario walks the registry through both lifetimes and prints each
// step to w. It fails if a lifetime guarantee does not hold.
func runScenario(w io.Writer, logger *slog.Logger) (err error) {
	r := registry.New(registry.WithLogger(logger), registry.WithCloseOnRelease())
	defer func() {
		err = errors.Join(err, r.Close(context.Background()))
	}()

	if err := registry.RegisterService[Logger](r, newConsoleLogger(w)); err != nil {
		return err
	}
	if err := registry.RegisterService[Configuration](r, newFileConfiguration(w)); err != nil {
		return err
	}

	// second registration is reported and the original instance kept
	if err := registry.RegisterService[Logger](r, newConsoleLogger(w)); !errors.Is(err, registry.ErrDuplicate) {
		return fmt.Errorf("duplicate logger registration: got %v, want %v", err, registry.ErrDuplicate)
	}
	fmt.Fprintln(w, "duplicate Logger registration rejected")

	logger1, ok := registry.Get[Logger](r)
	if !ok {
		return errors.New("logger not resolved")
	}
	logger2, _ := registry.Get[Logger](r)
	if logger1 != logger2 {
		return errors.New("singleton logger resolved to different instances")
	}
	logger1.Info("information")
	logger2.Info("information")

	if err := listing.Singletons(w, r); err != nil {
		return err
	}
	if err := registry.UnregisterService[Logger](r); err != nil {
		return err
	}
	if err := listing.Singletons(w, r); err != nil {
		return err
	}

	r.Clear()

	err = registry.RegisterServiceFactory(r, func() (Configuration, error) {
		return newFileConfiguration(w), nil
	})
	if err != nil {
		return err
	}

	config1, ok := registry.Get[Configuration](r)
	if !ok {
		return errors.New("configuration not resolved")
	}
	config2, _ := registry.Get[Configuration](r)
	if config1 == config2 {
		return errors.New("factory configuration resolved to the same instance twice")
	}
	if err := errors.Join(config1.Load(), config2.Load()); err != nil {
		return err
	}

	if err := listing.Factories(w, r); err != nil {
		return err
	}
	if err := registry.UnregisterServiceFactory[Configuration](r); err != nil {
		return err
	}
	return listing.Factories(w, r)
}

// runList seeds a registry with the demo services and prints both listings.
func runList(w io.Writer, logger *slog.Logger) error {
	r := registry.New(registry.WithLogger(logger))
	if err := registry.RegisterService[Logger](r, newConsoleLogger(w), registry.WithDoc("console logger")); err != nil {
		return err
	}
	err := registry.RegisterServiceFactory(r, func() (Configuration, error) {
		return newFileConfiguration(w), nil
	}, registry.WithDoc("configuration loaded per request"))
	if err != nil {
		return err
	}

	if err := listing.Singletons(w, r); err != nil {
		return err
	}
	if err := listing.Factories(w, r); err != nil {
		return err
	}
	for _, e := range r.Entries() {
		fmt.Fprintf(w, "%-10s %-26s %s\n", e.Lifetime, e.Label, e.Doc)
	}
	return nil
}
