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

package core

import "fmt"

// Status is the processing state of a document.
//
// The legal progression is strictly sequential:
//
//	queued -> fetching -> extracting -> chunking -> embedding -> indexing -> done
//
// StatusFailed is reachable from any non-terminal state. StatusDone and
// StatusFailed are terminal.
type Status int

const (
	StatusQueued Status = iota + 1
	StatusFetching
	StatusExtracting
	StatusChunking
	StatusEmbedding
	StatusIndexing
	StatusDone
	StatusFailed
)

var statusNames = map[Status]string{
	StatusQueued:     "queued",
	StatusFetching:   "fetching",
	StatusExtracting: "extracting",
	StatusChunking:   "chunking",
	StatusEmbedding:  "embedding",
	StatusIndexing:   "indexing",
	StatusDone:       "done",
	StatusFailed:     "failed",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Valid reports whether s is a defined status value.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether no further transitions are permitted from s.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Next returns the immediate successor on the success path.
// Terminal states have no successor.
func (s Status) Next() (Status, bool) {
	if !s.Valid() || s.Terminal() {
		return 0, false
	}
	return s + 1, true
}

// CanAdvanceTo reports whether a transition from s to next is legal.
// Only the immediate successor is legal; failure transitions are handled
// separately and are legal from any non-terminal state.
func (s Status) CanAdvanceTo(next Status) bool {
	succ, ok := s.Next()
	return ok && next == succ
}

// Cmp orders statuses along the state-machine progression. It returns a
// negative value when s precedes other, zero when equal, positive otherwise.
// Observed status sequences for a document must be non-decreasing under this
// ordering.
func (s Status) Cmp(other Status) int {
	return int(s) - int(other)
}

// JobStatus is the state of an ingestion job. It mirrors the document's
// processing stages in lockstep and terminates as completed or failed.
type JobStatus int

const (
	JobStatusQueued JobStatus = iota + 1
	JobStatusFetching
	JobStatusExtracting
	JobStatusChunking
	JobStatusEmbedding
	JobStatusIndexing
	JobStatusCompleted
	JobStatusFailed
)

var jobStatusNames = map[JobStatus]string{
	JobStatusQueued:     "queued",
	JobStatusFetching:   "fetching",
	JobStatusExtracting: "extracting",
	JobStatusChunking:   "chunking",
	JobStatusEmbedding:  "embedding",
	JobStatusIndexing:   "indexing",
	JobStatusCompleted:  "completed",
	JobStatusFailed:     "failed",
}

func (s JobStatus) String() string {
	if name, ok := jobStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("jobstatus(%d)", int(s))
}

// Terminal reports whether the job has finished, successfully or not.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobStatusFor maps a document status to the job status recorded in
// lockstep with it. StatusDone maps to JobStatusCompleted and StatusFailed
// to JobStatusFailed; stage values map one to one.
func JobStatusFor(s Status) JobStatus {
	switch s {
	case StatusDone:
		return JobStatusCompleted
	case StatusFailed:
		return JobStatusFailed
	default:
		return JobStatus(s)
	}
}
