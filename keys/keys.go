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

package keys

import (
	"crypto/rand"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

const KeySize = 32

var ErrInvalidKey = errors.New("invalid key")

// Key identifies an account, identity or asset. Its text form is base58.
//
//nolint:recvcheck
type Key [KeySize]byte

// Zero is the unset key
var Zero Key

func (k Key) String() string {
	return base58.Encode(k[:])
}

func (k Key) Bytes() []byte {
	return k[:]
}

func (k Key) IsZero() bool {
	return k == Zero
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(data []byte) error {
	tmpKey, err := Parse(string(data))
	if err != nil {
		return err
	}
	*k = tmpKey
	return nil
}

func (Key) GormDataType() string {
	return "bytes"
}

// Value stores the key as raw bytes
func (k Key) Value() (driver.Value, error) {
	return k[:], nil
}

func (k *Key) Scan(val any) error {
	var data []byte
	switch v := val.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf(
			"value was not expected type, wanted []byte, got %T",
			val,
		)
	}
	if len(data) != KeySize {
		return fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidKey,
			KeySize,
			len(data),
		)
	}
	copy(k[:], data)
	return nil
}

// Parse decodes a base58 key
func Parse(s string) (Key, error) {
	var ret Key
	if s == "" {
		return ret, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	data := base58.Decode(s)
	if len(data) != KeySize {
		return ret, fmt.Errorf(
			"%w: %q does not decode to %d bytes",
			ErrInvalidKey,
			s,
			KeySize,
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// FromBytes copies a raw key
func FromBytes(data []byte) (Key, error) {
	var ret Key
	if len(data) != KeySize {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidKey,
			KeySize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// New returns a random key
func New() Key {
	var ret Key
	if _, err := rand.Read(ret[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return ret
}

// Derive computes a deterministic key from a program key and a list of
// seeds. The same inputs always yield the same key, so records such as the
// treasury vault or mint can be located without storing their keys.
func Derive(program Key, seeds ...[]byte) Key {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only possible with an oversized MAC key, and we pass none
		panic(err)
	}
	h.Write([]byte("votevault-derived"))
	h.Write(program[:])
	for _, seed := range seeds {
		// Length prefix keeps ("ab","c") distinct from ("a","bc")
		h.Write([]byte{byte(len(seed) >> 8), byte(len(seed))})
		h.Write(seed)
	}
	var ret Key
	copy(ret[:], h.Sum(nil))
	return ret
}
