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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeCloser struct {
	err     error
	blockCh chan struct{} // if non-nil, Close blocks until closed

	mu     sync.Mutex
	closes int
}

func (f *fakeCloser) Close(ctx context.Context) error {
	if f.blockCh != nil {
		select {
		case <-f.blockCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
	return f.err
}

func (f *fakeCloser) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

type ioCloser struct{ closed bool }

func (c *ioCloser) Close() error {
	c.closed = true
	return nil
}

// ---- tests ----

func TestAdapt(t *testing.T) {
	fc := &fakeCloser{}
	c, ok := Adapt(fc)
	require.True(t, ok)
	require.Same(t, fc, c)

	ic := &ioCloser{}
	c, ok = Adapt(ic)
	require.True(t, ok)
	require.NoError(t, c.Close(context.Background()))
	require.True(t, ic.closed)

	_, ok = Adapt("not a closer")
	require.False(t, ok)
	_, ok = Adapt(nil)
	require.False(t, ok)
}

func TestGroup_AddValidation(t *testing.T) {
	var g Group

	require.ErrorIs(t, g.Add("", &fakeCloser{}), ErrNilCloser)
	require.ErrorIs(t, g.Add("a", nil), ErrNilCloser)
	require.NoError(t, g.Add("a", &fakeCloser{}))
	require.ErrorIs(t, g.Add("a", &fakeCloser{}), ErrDuplicate)
	require.Equal(t, 1, g.Len())

	added, err := g.AddValue("b", 42)
	require.NoError(t, err)
	require.False(t, added, "non-closers are skipped")

	added, err = g.AddValue("c", &ioCloser{})
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, 2, g.Len())
}

func TestGroup_CloseAll(t *testing.T) {
	var g Group
	a, b := &fakeCloser{}, &fakeCloser{}
	require.NoError(t, g.Add("a", a))
	require.NoError(t, g.Add("b", b))

	require.NoError(t, g.Close(context.Background()))
	require.Equal(t, 1, a.count())
	require.Equal(t, 1, b.count())

	// one-shot
	require.NoError(t, g.Close(context.Background()))
	require.Equal(t, 1, a.count())
	require.ErrorIs(t, g.Add("c", &fakeCloser{}), ErrGroupClosed)
}

func TestGroup_CloseEmpty(t *testing.T) {
	var g Group
	require.NoError(t, g.Close(context.Background()))
}

func TestGroup_CloseJoinsErrors(t *testing.T) {
	var g Group
	e1, e2 := errors.New("e1"), errors.New("e2")
	ok := &fakeCloser{}
	require.NoError(t, g.Add("first", &fakeCloser{err: e1}))
	require.NoError(t, g.Add("second", &fakeCloser{err: e2}))
	require.NoError(t, g.Add("third", ok))

	err := g.Close(context.Background())
	require.ErrorIs(t, err, e1)
	require.ErrorIs(t, err, e2)
	require.Contains(t, err.Error(), "first: e1")
	require.Contains(t, err.Error(), "second: e2")
	require.Equal(t, 1, ok.count(), "siblings still close when one fails")
}

func TestGroup_ClosePanicIsReported(t *testing.T) {
	var g Group
	sibling := &fakeCloser{}
	require.NoError(t, g.Add("panicky", Func(func(context.Context) error { panic("boom") })))
	require.NoError(t, g.Add("sibling", sibling))

	err := g.Close(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "panicky: close panicked: boom")
	require.Equal(t, 1, sibling.count())
}

func TestGroup_CloseRespectsContext(t *testing.T) {
	var g Group
	blocked := &fakeCloser{blockCh: make(chan struct{})}
	require.NoError(t, g.Add("blocked", blocked))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.Close(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Zero(t, blocked.count())
}
