// Copyright 2025 The Recall Authors
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

package badger

import (
	"github.com/guilhermexp/recall/storage"
)

// Stores bundles the four repositories sharing one BadgerDB backend.
type Stores struct {
	Documents storage.DocumentRepository
	Chunks    storage.ChunkRepository
	Jobs      storage.JobRepository
	Memories  storage.MemoryRepository

	backend *Backend

	documents *DocumentRepository
	chunks    *ChunkRepository
	jobs      *JobRepository
	memories  *MemoryRepository
}

// OpenStores opens a backend at filePath and builds all repositories on it.
// Callers must Close the stores when done.
func OpenStores(filePath string, inMemory bool) (*Stores, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	documents, err := NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunks, err := NewChunkRepository(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	jobs, err := NewJobRepository(backend)
	if err != nil {
		chunks.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	memories, err := NewMemoryRepository(backend)
	if err != nil {
		jobs.Close()
		chunks.Close()
		documents.Close()
		backend.Close()
		return nil, err
	}

	return &Stores{
		Documents: documents,
		Chunks:    chunks,
		Jobs:      jobs,
		Memories:  memories,
		backend:   backend,
		documents: documents,
		chunks:    chunks,
		jobs:      jobs,
		memories:  memories,
	}, nil
}

// Backend exposes the shared backend, mainly for vector search wiring.
func (s *Stores) Backend() *Backend {
	return s.backend
}

// Close releases the repositories and the backend.
func (s *Stores) Close() error {
	s.memories.Close()
	s.jobs.Close()
	s.chunks.Close()
	s.documents.Close()
	return s.backend.Close()
}
