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

// Package encode defines the text embedding seam used at index and query
// time. Records carrying tags are embedded locally by the hashing package;
// records carrying free text are embedded through an Embedder, typically
// the OpenAI-compatible implementation in encode/openai.
package encode
