// Copyright 2025 Poiesic Systems
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


package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/poiesic/lectio/core"
)

// encMode uses Core Deterministic Encoding so identical passages always
// produce identical bytes.
var encMode cbor.EncMode

// decMode ignores unknown fields so older readers accept newer records.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("storage: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("storage: CBOR decoder initialization failed: " + err.Error())
	}
}

// passageRecord is the stored form of a passage.
type passageRecord struct {
	ID         uint64    `cbor:"1,keyasint"`
	Content    string    `cbor:"2,keyasint"`
	SourcePage string    `cbor:"3,keyasint"`
	Category   string    `cbor:"4,keyasint,omitempty"`
	Embedding  []float32 `cbor:"5,keyasint,omitempty"`
}

// MarshalID serializes an ID to 8 big-endian bytes so keys sort by ID.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("%w: id needs 8 bytes, got %d", ErrTruncatedData, len(data))
	}
	return core.ID(binary.BigEndian.Uint64(data)), nil
}

// MarshalPassage serializes a Passage to bytes.
func MarshalPassage(passage *core.Passage) ([]byte, error) {
	data, err := encMode.Marshal(passageRecord{
		ID:         uint64(passage.ID),
		Content:    passage.Content,
		SourcePage: passage.SourcePage,
		Category:   passage.Category,
		Embedding:  passage.Embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalPassage deserializes a Passage from bytes.
func UnmarshalPassage(data []byte) (*core.Passage, error) {
	var record passageRecord
	if err := decMode.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &core.Passage{
		ID:         core.ID(record.ID),
		Content:    record.Content,
		SourcePage: record.SourcePage,
		Category:   record.Category,
		Embedding:  record.Embedding,
	}, nil
}
