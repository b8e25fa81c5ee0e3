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

package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Closer releases the resources held by a service instance.
type Closer interface {
	Close(ctx context.Context) error
}

// Func adapts a plain function to Closer.
type Func func(ctx context.Context) error

// Close calls f(ctx).
func (f Func) Close(ctx context.Context) error { return f(ctx) }

// Adapt returns a Closer for v when v knows how to release itself,
// either as a Closer or as an io.Closer.
func Adapt(v any) (Closer, bool) {
	switch c := v.(type) {
	case Closer:
		return c, true
	case io.Closer:
		return Func(func(context.Context) error { return c.Close() }), true
	default:
		return nil, false
	}
}

var (
	// ErrGroupClosed indicates the group was already closed.
	ErrGroupClosed = errors.New("release/group: closed")
	// ErrNilCloser indicates a nil closer or an empty name was provided.
	ErrNilCloser = errors.New("release/group: nil closer")
	// ErrDuplicate indicates a duplicate closer name.
	ErrDuplicate = errors.New("release/group: duplicate closer name")
)

// Group closes a set of named closers in parallel.
//
// Semantics:
//   - Closers run concurrently; no ordering between them is guaranteed.
//   - Every failure is wrapped with the closer name and aggregated with errors.Join.
//   - A panicking closer is reported as an error and does not stop its siblings.
//   - Close is one-shot: Add after Close returns ErrGroupClosed, and a second
//     Close returns nil.
//
// The zero value is ready to use.
type Group struct {
	// mu protects names and items.
	mu     sync.Mutex
	names  map[string]struct{}
	items  []item
	closed atomic.Bool
}

type item struct {
	name   string
	closer Closer
}

// Add registers c under name.
// Returns ErrGroupClosed if the group is closed, ErrNilCloser if c is nil or
// name is empty, or ErrDuplicate if name was already added.
func (g *Group) Add(name string, c Closer) error {
	if c == nil || name == "" {
		return ErrNilCloser
	}
	if g.closed.Load() {
		return ErrGroupClosed
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.names == nil {
		g.names = make(map[string]struct{}, 1)
	}
	if _, exists := g.names[name]; exists {
		return ErrDuplicate
	}
	g.names[name] = struct{}{}
	g.items = append(g.items, item{name: name, closer: c})

	return nil
}

// AddValue adapts v with Adapt and adds it under name.
// It reports whether v was releasable; values that are not are skipped.
func (g *Group) AddValue(name string, v any) (bool, error) {
	c, ok := Adapt(v)
	if !ok {
		return false, nil
	}
	if err := g.Add(name, c); err != nil {
		return false, err
	}
	return true, nil
}

// Len returns the number of closers added so far.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.items)
}

// Close runs every closer in parallel and returns the joined errors.
func (g *Group) Close(ctx context.Context) error {
	if g.closed.Swap(true) {
		return nil
	}

	g.mu.Lock()
	items := append([]item(nil), g.items...)
	g.mu.Unlock()

	if len(items) == 0 {
		return nil
	}

	errs := make(chan error, len(items))
	var wg sync.WaitGroup
	wg.Add(len(items))

	for _, it := range items {
		go func(it item) {
			defer wg.Done()
			if err := closeOne(ctx, it.closer); err != nil {
				errs <- fmt.Errorf("%s: %w", it.name, err)
			}
		}(it)
	}

	wg.Wait()
	close(errs)

	return joinErrors(errs)
}

// closeOne calls c.Close and converts a panic into an error.
func closeOne(ctx context.Context, c Closer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("close panicked: %v", rec)
		}
	}()
	return c.Close(ctx)
}

// joinErrors drains an error channel and joins all errors.
func joinErrors(errs <-chan error) error {
	var agg error
	for err := range errs {
		agg = errors.Join(agg, err)
	}
	return agg
}
