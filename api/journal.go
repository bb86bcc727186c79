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
	"strconv"
)

const (
	DefaultJournalLimit = 100
	MaxJournalLimit     = 1000
)

var ErrInvalidJournalRange = errors.New("invalid journal range parameters")

// JournalRange selects a window of journal entries
type JournalRange struct {
	From  uint64
	Limit int
}

// ParseJournalRange parses the from and limit query parameters and applies
// defaults and bounds clamping
func ParseJournalRange(r *http.Request) (JournalRange, error) {
	params := JournalRange{
		From:  1,
		Limit: DefaultJournalLimit,
	}
	query := r.URL.Query()
	if fromParam := query.Get("from"); fromParam != "" {
		from, err := strconv.ParseUint(fromParam, 10, 64)
		if err != nil {
			return JournalRange{}, ErrInvalidJournalRange
		}
		params.From = from
	}
	if limitParam := query.Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return JournalRange{}, ErrInvalidJournalRange
		}
		params.Limit = limit
	}

	// Bounds clamping
	if params.From < 1 {
		params.From = 1
	}
	if params.Limit < 1 {
		params.Limit = 1
	}
	if params.Limit > MaxJournalLimit {
		params.Limit = MaxJournalLimit
	}
	return params, nil
}

// SetJournalHeaders reports the last journal sequence and the start of the
// next page
func SetJournalHeaders(
	w http.ResponseWriter,
	lastSequence uint64,
	next uint64,
) {
	w.Header().Set(
		"X-Journal-Sequence",
		strconv.FormatUint(lastSequence, 10),
	)
	if next > 0 && next <= lastSequence {
		w.Header().Set(
			"X-Journal-Next",
			strconv.FormatUint(next, 10),
		)
	}
}
