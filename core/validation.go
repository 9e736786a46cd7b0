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


package core

import (
	"fmt"
	"time"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - DocumentType must be one of the recognized types
//   - Source must not be empty
//   - CreatedAt must not be in the future
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding processor runs)
//   - BriefSummary (can be empty until the summary processor runs)
//   - ID (0 is valid from database sequences)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}

	if err := ValidateDocumentType(doc.DocumentType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if doc.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySource)
	}

	if !doc.CreatedAt.IsZero() && !IsValidTimestamp(doc.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateDocumentType validates that a DocumentType has a recognized value.
func ValidateDocumentType(dt DocumentType) error {
	switch dt {
	case DocumentTypeConversation, DocumentTypeDocument, DocumentTypeDecision, DocumentTypeResolution:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidDocumentType, dt)
}

// ValidateSearchRequest validates a SearchRequest according to domain rules.
//
// Validation rules:
//   - DocumentType, when set, must be one of the recognized types
//   - Threshold, when set, must lie in [0, 1]
//
// Query may be empty: an empty query yields an empty result set rather than
// an error.
func ValidateSearchRequest(req *SearchRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidSearchRequest)
	}

	if req.DocumentType != "" {
		if err := ValidateDocumentType(req.DocumentType); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSearchRequest, err)
		}
	}

	if req.Threshold != nil && (*req.Threshold < 0 || *req.Threshold > 1) {
		return fmt.Errorf("%w: %w", ErrInvalidSearchRequest, ErrInvalidThreshold)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
