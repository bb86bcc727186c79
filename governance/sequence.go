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

package governance

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/internal/checked"
)

var errCounterNotInitialized = failure.New(
	failure.NotInitialized,
	"proposal counter is not initialized",
)

// SequenceAllocator issues proposal identifiers from the singleton counter.
// Identifiers start at zero and never repeat.
type SequenceAllocator struct {
	db *database.Database
}

func NewSequenceAllocator(db *database.Database) *SequenceAllocator {
	return &SequenceAllocator{db: db}
}

// Initialize creates the counter with a next identifier of zero
func (s *SequenceAllocator) Initialize(txn *database.Txn) error {
	created, err := s.db.CreateSequenceCounter(
		&models.SequenceCounter{NextID: 0},
		txn,
	)
	if err != nil {
		return fmt.Errorf("create sequence counter: %w", err)
	}
	if !created {
		return failure.ErrAlreadyInitialized
	}
	return nil
}

// Peek returns the identifier the next allocation will return
func (s *SequenceAllocator) Peek(txn *database.Txn) (uint64, error) {
	counter, err := s.load(txn)
	if err != nil {
		return 0, err
	}
	return uint64(counter.NextID), nil
}

// Allocate returns the current identifier and advances the counter. It fails
// with CounterOverflow, leaving the counter unchanged, when the counter
// cannot advance.
func (s *SequenceAllocator) Allocate(txn *database.Txn) (uint64, error) {
	counter, err := s.load(txn)
	if err != nil {
		return 0, err
	}
	id := uint64(counter.NextID)
	next, ok := checked.Add(id, 1)
	if !ok {
		return 0, failure.ErrCounterOverflow
	}
	counter.NextID = types.Uint64(next)
	if err := s.db.SetSequenceCounter(counter, txn); err != nil {
		return 0, fmt.Errorf("update sequence counter: %w", err)
	}
	return id, nil
}

func (s *SequenceAllocator) load(
	txn *database.Txn,
) (*models.SequenceCounter, error) {
	counter, err := s.db.GetSequenceCounter(txn)
	if err != nil {
		if errors.Is(err, models.ErrSequenceCounterNotFound) {
			return nil, errCounterNotInitialized
		}
		return nil, err
	}
	return counter, nil
}
