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
	"strings"
	"unicode"

	"github.com/veridex/tagrank/core"
)

// Chunker decomposes a parent record into the chunks that get indexed.
// Implementations must set each chunk's ParentId to the parent's Id and
// assign a stable chunk Id.
type Chunker interface {
	Chunk(parent *core.Record) ([]*core.Record, error)
}

// DefaultChunker produces one chunk per sentence for text records and a
// single tag-carrying chunk for tagged records. Chunk identifiers are
// derived from the parent identifier and the chunk content, so chunking
// the same record twice yields the same chunk keys.
type DefaultChunker struct{}

var _ Chunker = (*DefaultChunker)(nil)

// Chunk decomposes the parent record.
func (c *DefaultChunker) Chunk(parent *core.Record) ([]*core.Record, error) {
	if len(parent.Tags) > 0 {
		chunk := &core.Record{
			Id:       core.IDFromContent(string(parent.Id) + "\x00" + core.Map(parent.Tags).Key()),
			ParentId: parent.Id,
			Tags:     parent.Tags,
		}
		return []*core.Record{chunk}, nil
	}

	sentences := SplitSentences(parent.Text)
	chunks := make([]*core.Record, 0, len(sentences))
	for _, sentence := range sentences {
		chunks = append(chunks, &core.Record{
			Id:       core.IDFromContent(string(parent.Id) + "\x00" + sentence),
			ParentId: parent.Id,
			Text:     sentence,
		})
	}
	return chunks, nil
}

// SplitSentences splits text on sentence-terminating punctuation followed
// by whitespace. Fragments without a terminator form a final sentence.
// Empty and whitespace-only fragments are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		current.Reset()
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		}
	}
	flush()

	return sentences
}
