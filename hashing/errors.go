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

package hashing

import "errors"

var (
	// ErrInvalidDims is returned when the embedding width is not positive.
	ErrInvalidDims = errors.New("embedding dimensions must be positive")

	// ErrInvalidMaxVal is returned when the value magnitude bound is not positive.
	ErrInvalidMaxVal = errors.New("max value bound must be positive")
)
