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

package api

import (
	"errors"
	"net/http"

	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/keys"
)

// CallerHeader carries the base58 key of a caller already authenticated by
// a trusted front proxy
const CallerHeader = "X-Votevault-Caller"

var ErrInvalidCaller = errors.New("invalid caller identity")

// IdentityFunc resolves the verified caller of a request. Requests without
// an identity resolve to auth.Anonymous.
type IdentityFunc func(*http.Request) (auth.Caller, error)

// HeaderIdentity trusts the CallerHeader value
func HeaderIdentity(r *http.Request) (auth.Caller, error) {
	value := r.Header.Get(CallerHeader)
	if value == "" {
		return auth.Anonymous, nil
	}
	key, err := keys.Parse(value)
	if err != nil {
		return auth.Anonymous, errors.Join(ErrInvalidCaller, err)
	}
	return auth.Verified(key), nil
}
