// Copyright 2025 Blink Labs Software
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

package types_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/blinklabs-io/votevault/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ScanValue(t *testing.T) {
	testDefs := []struct {
		value    types.Uint64
		expected string
	}{
		{value: 0, expected: "0"},
		{value: 123, expected: "123"},
		{value: math.MaxUint64, expected: "18446744073709551615"},
	}
	for _, testDef := range testDefs {
		valueOut, err := testDef.value.Value()
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, valueOut)
		var scanned types.Uint64
		require.NoError(t, scanned.Scan(valueOut))
		assert.Equal(t, testDef.value, scanned)
		// Some drivers hand back []byte for string columns
		require.NoError(t, scanned.Scan([]byte(testDef.expected)))
		assert.Equal(t, testDef.value, scanned)
	}
}

func TestUint64ScanInvalid(t *testing.T) {
	var u types.Uint64
	assert.Error(t, u.Scan("not a number"))
	assert.Error(t, u.Scan(int64(-1)))
	assert.Error(t, u.Scan(3.14))
	require.NoError(t, u.Scan(int64(42)))
	assert.Equal(t, types.Uint64(42), u)
}

func TestJournalBlobKeyOrdering(t *testing.T) {
	prev := types.JournalBlobKey(0)
	for _, seq := range []uint64{1, 255, 256, 1 << 32, math.MaxUint64} {
		key := types.JournalBlobKey(seq)
		assert.Equal(t, -1, bytes.Compare(prev, key), "sequence %d", seq)
		parsed, err := types.JournalSequenceFromKey(key)
		require.NoError(t, err)
		assert.Equal(t, seq, parsed)
		prev = key
	}
	_, err := types.JournalSequenceFromKey([]byte("journal:x"))
	assert.Error(t, err)
}
