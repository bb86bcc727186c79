// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package keys_test

import (
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/votevault/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	k := keys.New()
	parsed, err := keys.Parse(k.String())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "0OIl"} {
		_, err := keys.Parse(input)
		assert.ErrorIs(t, err, keys.ErrInvalidKey, "input %q", input)
	}
}

func TestJSONText(t *testing.T) {
	type wrapper struct {
		Owner keys.Key `json:"owner"`
	}
	in := wrapper{Owner: keys.New()}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), in.Owner.String())
	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestScan(t *testing.T) {
	k := keys.New()
	val, err := k.Value()
	require.NoError(t, err)
	var scanned keys.Key
	require.NoError(t, scanned.Scan(val))
	assert.Equal(t, k, scanned)
	assert.Error(t, scanned.Scan([]byte{1, 2, 3}))
	assert.Error(t, scanned.Scan(42))
}

func TestDerive(t *testing.T) {
	program := keys.New()
	a := keys.Derive(program, []byte("x_mint"))
	b := keys.Derive(program, []byte("x_mint"))
	c := keys.Derive(program, []byte("sol_vault"))
	d := keys.Derive(keys.New(), []byte("x_mint"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	// Seed boundaries are part of the derivation
	assert.NotEqual(
		t,
		keys.Derive(program, []byte("ab"), []byte("c")),
		keys.Derive(program, []byte("a"), []byte("bc")),
	)
}
