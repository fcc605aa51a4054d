package badger

import (
	"github.com/veridex/tagrank/core"
)

// Key prefixes for different data types
const (
	recordPrefix      = "rec"
	chunkPrefix       = "chk"
	chunkParentPrefix = "chkpar"
)

// Composite key fields are separated by 0x00, which cannot appear in the
// prefix constants and keeps lexicographic prefix scans exact even when an
// identifier contains the prefix separator ':'.
const keySep = "\x00"

// makeRecordKey generates a key for a root record by ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(recordPrefix + ":" + string(id))
}

// makeChunkKey generates a key for a chunk record by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(chunkPrefix + ":" + string(id))
}

// makeChunkParentKey generates a composite key for the parent index.
// Format: prefix:parentID\x00chunkID
func makeChunkParentKey(parentID, chunkID core.ID) []byte {
	prefix := chunkParentPrefix + ":"
	buf := make([]byte, 0, len(prefix)+len(parentID)+len(keySep)+len(chunkID))
	buf = append(buf, prefix...)
	buf = append(buf, parentID...)
	buf = append(buf, keySep...)
	buf = append(buf, chunkID...)
	return buf
}

// makePartialChunkParentKey generates the scan prefix for all chunks of a parent.
func makePartialChunkParentKey(parentID core.ID) []byte {
	prefix := chunkParentPrefix + ":"
	buf := make([]byte, 0, len(prefix)+len(parentID)+len(keySep))
	buf = append(buf, prefix...)
	buf = append(buf, parentID...)
	buf = append(buf, keySep...)
	return buf
}
