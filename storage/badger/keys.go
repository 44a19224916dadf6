package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/guilhermexp/recall/core"
)

// Key prefixes for different data types
const (
	documentPrefix     = "doc"
	contentKeyPrefix   = "docck"
	chunkPrefix        = "chu"
	jobPrefix          = "job"
	memoryPrefix       = "mem"
	memorySourcePrefix = "memsrc"
	documentIDSeq      = "docseq"
	chunkIDSeq         = "chuseq"
	jobIDSeq           = "jobseq"
	memoryIDSeq        = "memseq"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// documentIterPrefix is the iteration prefix for document rows. The trailing
// colon keeps content-key index entries (docck:) out of document scans.
func documentIterPrefix() []byte {
	return []byte(documentPrefix + ":")
}

// makeContentKey generates the uniqueness-index key for (tenant, contentHash).
// A single entry maps the pair to the owning document ID; its existence is
// what makes duplicate submissions race-safe.
func makeContentKey(tenantID, contentHash string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", contentKeyPrefix, tenantID, contentHash))
}

// makeChunkKey generates a composite key for a chunk row.
// Format: prefix:documentID:chunkIndex, both BigEndian so a prefix scan
// returns a document's chunks in index order.
func makeChunkKey(documentID core.ID, chunkIndex int) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	return buf
}

// makeChunkDocPrefix generates the scan prefix covering all chunks of one document.
func makeChunkDocPrefix(documentID core.ID) []byte {
	prefix := chunkPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// chunkIterPrefix is the iteration prefix covering all chunk rows.
func chunkIterPrefix() []byte {
	return []byte(chunkPrefix + ":")
}

// makeJobKey generates the key for a document's ingestion job.
// Jobs are keyed by document ID; a document holds at most one job.
func makeJobKey(documentID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", jobPrefix, documentID))
}

// makeMemoryKey generates a key for a memory by ID.
func makeMemoryKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", memoryPrefix, id))
}

// makeMemorySourceKey generates the index key mapping a source document to
// its derived memory ID.
func makeMemorySourceKey(documentID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", memorySourcePrefix, documentID))
}
