package badger

import (
	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/storage"
)

// Key prefixes for different data types
const (
	passagePrefix         = "pasrec:"
	passageCategoryPrefix = "pascat:"
)

// makePassageKey generates a key for a passage by ID.
// Format: prefix + 8 byte big-endian ID, so iteration follows ID order.
func makePassageKey(id core.ID) []byte {
	buf := make([]byte, 0, len(passagePrefix)+8)
	buf = append(buf, passagePrefix...)
	return append(buf, storage.MarshalID(id)...)
}

// makeCategoryKey generates a composite key for the category index.
// Format: prefix:category:id
func makeCategoryKey(category string, id core.ID) []byte {
	buf := makePartialCategoryKey(category)
	return append(buf, storage.MarshalID(id)...)
}

// makePartialCategoryKey generates a partial key for category lookups.
// Format: prefix:category:
func makePartialCategoryKey(category string) []byte {
	buf := make([]byte, 0, len(passageCategoryPrefix)+len(category)+1+8)
	buf = append(buf, passageCategoryPrefix...)
	buf = append(buf, category...)
	return append(buf, ':')
}
