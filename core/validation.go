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

import (
	"fmt"
	"strings"
)

// ValidateSubmission validates submission input before any document or job
// row is created. A rejected submission leaves no trace in storage.
//
// Validation rules:
//   - TenantID must not be empty
//   - exactly one of content or url must be non-blank
func ValidateSubmission(tenantID, content, url string) error {
	if strings.TrimSpace(tenantID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, ErrEmptyTenant)
	}

	hasContent := strings.TrimSpace(content) != ""
	hasURL := strings.TrimSpace(url) != ""

	if !hasContent && !hasURL {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, ErrEmptyContent)
	}
	if hasContent && hasURL {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, ErrConflictingSource)
	}

	return nil
}

// ValidateDocumentType validates that t is a known document type.
func ValidateDocumentType(t DocumentType) error {
	switch t {
	case DocumentTypeText, DocumentTypeURL:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDocumentType, t)
	}
}
