// Copyright 2025 Veridex Labs
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
	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrEmptyRecord indicates a record carries neither text nor tags.
	ErrEmptyRecord = errors.New("record has no content")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmbeddingDim indicates an embedding does not match the session dimension.
	ErrEmbeddingDim = errors.New("embedding dimension mismatch")

	// ErrParentImmutable indicates an attempt to change a chunk's parent reference.
	ErrParentImmutable = errors.New("parent reference cannot be changed")

	// ErrInvalidKind indicates an unknown value kind tag.
	ErrInvalidKind = errors.New("invalid value kind")
)
