package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateRecord(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		record  *Record
		wantErr error
	}{
		{
			name: "valid text record",
			record: &Record{
				Id:   "r1",
				Text: "Hello world",
			},
			wantErr: nil,
		},
		{
			name: "valid tag record",
			record: &Record{
				Id:   "r2",
				Tags: Tags{"Subject": String("Comedy")},
			},
			wantErr: nil,
		},
		{
			name: "valid record with timestamps",
			record: &Record{
				Id:         "r3",
				Text:       "Hello",
				InsertedAt: validTime,
				UpdatedAt:  validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidRecord,
		},
		{
			name: "no content",
			record: &Record{
				Id: "r4",
			},
			wantErr: ErrEmptyRecord,
		},
		{
			name: "future timestamp",
			record: &Record{
				Id:         "r5",
				Text:       "Hello",
				InsertedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRecord() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmbedding(t *testing.T) {
	rec := &Record{Id: "r1", Text: "x", Embedding: []float32{1, 2, 3}}

	if err := ValidateEmbedding(rec, 3); err != nil {
		t.Errorf("ValidateEmbedding() unexpected error: %v", err)
	}

	if err := ValidateEmbedding(rec, 4); !errors.Is(err, ErrEmbeddingDim) {
		t.Errorf("ValidateEmbedding() error = %v, want ErrEmbeddingDim", err)
	}

	// Missing embedding is allowed; it is attached later in the pipeline.
	empty := &Record{Id: "r2", Text: "x"}
	if err := ValidateEmbedding(empty, 4); err != nil {
		t.Errorf("ValidateEmbedding() unexpected error for empty embedding: %v", err)
	}
}
