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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSubmission indicates a submission failed validation before
	// any document was created.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrEmptyContent indicates a submission carried neither content nor a URL.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyTenant indicates the tenant scope is missing.
	ErrEmptyTenant = errors.New("tenant id cannot be empty")

	// ErrConflictingSource indicates a submission carried both inline
	// content and a URL.
	ErrConflictingSource = errors.New("submission must carry either content or a url, not both")

	// ErrInvalidDocumentType indicates an unknown DocumentType value.
	ErrInvalidDocumentType = errors.New("invalid document type")

	// ErrRollbackIncomplete marks a failed ingestion whose chunk rollback
	// could not finish. Chunk rows may be orphaned and require an
	// operator audit; this is an operational incident, not an ordinary
	// failed ingestion.
	ErrRollbackIncomplete = errors.New("rollback incomplete: orphaned chunk rows may remain")
)
