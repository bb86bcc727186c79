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

// Package auth models the verified identity of the party invoking an
// operation. A Caller can only be produced by an identity provider that has
// already verified the key, so holding one is the capability to act as that
// key.
package auth

import (
	"fmt"

	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/keys"
)

type Caller struct {
	key      keys.Key
	verified bool
}

// Verified returns a Caller for a key whose control has been proven by the
// identity provider
func Verified(key keys.Key) Caller {
	return Caller{
		key:      key,
		verified: !key.IsZero(),
	}
}

// Anonymous is the Caller used when no identity was presented
var Anonymous = Caller{}

func (c Caller) Key() keys.Key {
	return c.key
}

func (c Caller) IsVerified() bool {
	return c.verified
}

func (c Caller) String() string {
	if !c.verified {
		return "anonymous"
	}
	return c.key.String()
}

// Is reports whether the caller is verified as the given key
func (c Caller) Is(key keys.Key) bool {
	return c.verified && c.key == key
}

// Require fails with UnauthorizedAccess unless the caller is verified as one
// of the given authorities
func Require(caller Caller, authorities ...keys.Key) error {
	for _, authority := range authorities {
		if authority.IsZero() {
			continue
		}
		if caller.Is(authority) {
			return nil
		}
	}
	return failure.New(
		failure.UnauthorizedAccess,
		fmt.Sprintf("caller %s is not authorized", caller),
	)
}

// RequireVerified fails with UnauthorizedAccess for anonymous callers
func RequireVerified(caller Caller) error {
	if !caller.verified {
		return failure.New(
			failure.UnauthorizedAccess,
			"caller identity is not verified",
		)
	}
	return nil
}
