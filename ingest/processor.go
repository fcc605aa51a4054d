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

package ingest

import (
	"context"

	"github.com/veridex/tagrank/core"
)

// processor is an internal interface for embedding the chunks of parent records.
// Implementations handle one embedding strategy each.
type processor interface {
	// process embeds the chunks belonging to the given parent records.
	process(ctx context.Context, parentIDs ...core.ID) error
}
