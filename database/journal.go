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

package database

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/votevault/database/types"
	"github.com/fxamacker/cbor/v2"
)

var journalEncMode cbor.EncMode

func init() {
	var err error
	journalEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("journal CBOR encoder: %s", err))
	}
}

// JournalEntry records one committed state-changing operation
type JournalEntry struct {
	_         struct{}          `cbor:",toarray"`
	Sequence  uint64            `json:"sequence"`
	Operation string            `json:"operation"`
	Caller    string            `json:"caller"`
	Timestamp int64             `json:"timestamp"`
	Fields    map[string]string `json:"fields,omitempty"`
}

func (d *Database) journalSequence(txn *Txn) (uint64, error) {
	val, err := d.blob.Get(txn.Blob(), []byte(types.JournalSequenceBlobKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("invalid journal sequence length: %d", len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

// JournalSequence returns the sequence of the last journal entry, or 0 when
// the journal is empty
func (d *Database) JournalSequence(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.journalSequence(txn)
}

// AppendJournal assigns the next sequence to the entry and stores it. It must
// run in the read-write transaction of the operation it records.
func (d *Database) AppendJournal(entry *JournalEntry, txn *Txn) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	if !txn.ReadWrite() {
		return errors.New("journal append requires a read-write transaction")
	}
	last, err := d.journalSequence(txn)
	if err != nil {
		return fmt.Errorf("read journal sequence: %w", err)
	}
	entry.Sequence = last + 1
	data, err := journalEncMode.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	if err := d.blob.Set(txn.Blob(), types.JournalBlobKey(entry.Sequence), data); err != nil {
		return err
	}
	return d.blob.Set(
		txn.Blob(),
		[]byte(types.JournalSequenceBlobKey),
		binary.BigEndian.AppendUint64(nil, entry.Sequence),
	)
}

// GetJournal returns up to limit entries starting at sequence from. A limit
// of zero or less returns every remaining entry.
func (d *Database) GetJournal(
	from uint64,
	limit int,
	txn *Txn,
) ([]JournalEntry, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	prefix := []byte(types.JournalBlobKeyPrefix)
	iter := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	ret := []JournalEntry{}
	for iter.Seek(types.JournalBlobKey(from)); iter.ValidForPrefix(prefix); iter.Next() {
		if limit > 0 && len(ret) >= limit {
			break
		}
		item := iter.Item()
		if item == nil {
			continue
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var entry JournalEntry
		if err := cbor.Unmarshal(val, &entry); err != nil {
			return nil, fmt.Errorf(
				"decode journal entry %x: %w",
				item.Key(),
				err,
			)
		}
		ret = append(ret, entry)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}
