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

package listing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/locator/runtime/registry"
)

type greeter interface{ Greet() string }

type english struct{ name string }

func (e *english) Greet() string { return "hello " + e.name }

func TestRender_Labels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "Things", []string{"a.B", "*c.D"}, nil))
	require.Equal(t, "   | Things |\n-> [ a.B ]\n-> [ *c.D ]\n", buf.String())
}

func TestRender_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "Things", nil, registry.ErrNoServices))
	require.Equal(t, "   | Things |\n-> no services registered\n", buf.String())
}

func TestRender_PropagatesOtherErrors(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	require.ErrorIs(t, Render(&buf, "Things", nil, boom), boom)
	require.Empty(t, buf.String())
}

func TestSingletonsAndFactories(t *testing.T) {
	r := registry.New()
	require.NoError(t, registry.RegisterService[greeter](r, &english{name: "world"}))

	var buf bytes.Buffer
	require.NoError(t, Singletons(&buf, r))
	require.NoError(t, Factories(&buf, r))
	require.Equal(t,
		"   | Registered Singleton Services |\n-> [ listing.greeter ]\n"+
			"   | Registered Factory Services |\n-> no services registered\n",
		buf.String())
}
