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
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyOf_StableAndDistinct(t *testing.T) {
	require.Equal(t, KeyOf[Logger](), KeyOf[Logger]())
	require.True(t, KeyOf[Logger]() == KeyOf[Logger](), "keys must be comparable map keys")

	require.False(t, KeyOf[Logger]() == KeyOf[Config]())
	require.False(t, KeyOf[fileConfig]() == KeyOf[*fileConfig]())

	// same method set, different contract
	type otherLogger interface{ Info(msg string) }
	require.False(t, KeyOf[Logger]() == KeyOf[otherLogger]())
}

func TestKeyFor_MatchesKeyOf(t *testing.T) {
	require.Equal(t, KeyOf[io.Reader](), KeyFor(reflect.TypeFor[io.Reader]()))
	require.Equal(t, reflect.TypeFor[io.Reader](), KeyOf[io.Reader]().Type())
}

func TestKey_String(t *testing.T) {
	require.Equal(t, "registry.Logger", KeyOf[Logger]().String())
	require.Equal(t, "*registry.fileConfig", KeyOf[*fileConfig]().String())
	require.Equal(t, "io.Reader", KeyOf[io.Reader]().String())

	var zero Key
	require.True(t, zero.IsZero())
	require.Equal(t, "<empty>", zero.String())
	require.True(t, KeyFor(nil).IsZero())
	require.False(t, KeyOf[Logger]().IsZero())
}

func TestLifetimeAndEventKind_String(t *testing.T) {
	require.Equal(t, "singleton", Singleton.String())
	require.Equal(t, "transient", Transient.String())
	require.Equal(t, "unknown", Lifetime(0).String())

	require.Equal(t, "service registered", EventRegistered.String())
	require.Equal(t, "registry cleared", EventCleared.String())
	require.Equal(t, "unknown event", EventKind(0).String())
}
