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

// Package listing renders registry label listings as plain text.
package listing

import (
	"errors"
	"fmt"
	"io"

	"dirpx.dev/locator/runtime/registry"
)

const (
	singletonTitle = "Registered Singleton Services"
	factoryTitle   = "Registered Factory Services"
)

// Singletons writes the singleton listing of r to w.
func Singletons(w io.Writer, r *registry.Registry) error {
	labels, err := r.ServicesList()
	return Render(w, singletonTitle, labels, err)
}

// Factories writes the factory listing of r to w.
func Factories(w io.Writer, r *registry.Registry) error {
	labels, err := r.ServicesFactoryList()
	return Render(w, factoryTitle, labels, err)
}

// Render writes a titled listing of labels. listErr is the error returned
// by the listing call; registry.ErrNoServices renders as an empty-table
// notice, any other error is returned unchanged.
//
//	   | Registered Singleton Services |
//	-> [ demo.Logger ]
func Render(w io.Writer, title string, labels []string, listErr error) error {
	if listErr != nil && !errors.Is(listErr, registry.ErrNoServices) {
		return listErr
	}
	if _, err := fmt.Fprintf(w, "   | %s |\n", title); err != nil {
		return err
	}
	if len(labels) == 0 {
		_, err := fmt.Fprintln(w, "-> no services registered")
		return err
	}
	for _, l := range labels {
		if _, err := fmt.Fprintf(w, "-> [ %s ]\n", l); err != nil {
			return err
		}
	}
	return nil
}
