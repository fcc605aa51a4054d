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

// Package rank aggregates chunk-level matches up to their parent records.
//
// The Ranker type implements a collect/aggregate/rerank pipeline over a
// query record's match list:
//   - Collect chunk-level matches into per-parent score groups
//   - Aggregate each group to a single score (best chunk dominates)
//   - Rerank parents best-first and replace the query's match list
//
// RankAndResolve additionally looks up each parent's full payload from a
// record store, reporting any identifiers that could not be resolved
// instead of dropping them.
package rank
