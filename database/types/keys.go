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

package types

import (
	"encoding/binary"
	"errors"
)

const (
	JournalBlobKeyPrefix   = "journal:"
	JournalSequenceBlobKey = "journal_sequence"
)

// JournalBlobKey returns the blob key for a journal entry. The big-endian
// sequence keeps entries in order when iterating the prefix.
func JournalBlobKey(sequence uint64) []byte {
	key := make([]byte, 0, len(JournalBlobKeyPrefix)+8)
	key = append(key, JournalBlobKeyPrefix...)
	return binary.BigEndian.AppendUint64(key, sequence)
}

// JournalSequenceFromKey extracts the sequence from a journal blob key
func JournalSequenceFromKey(key []byte) (uint64, error) {
	if len(key) != len(JournalBlobKeyPrefix)+8 ||
		string(key[:len(JournalBlobKeyPrefix)]) != JournalBlobKeyPrefix {
		return 0, errors.New("not a journal key")
	}
	return binary.BigEndian.Uint64(key[len(JournalBlobKeyPrefix):]), nil
}
