package quill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillhq/quill"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestAnswerRequestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		req     quill.AnswerRequest
		wantErr bool
	}{
		{
			name: "minimal",
			req:  quill.AnswerRequest{Query: "q"},
		},
		{
			name:    "empty query",
			req:     quill.AnswerRequest{},
			wantErr: true,
		},
		{
			name: "similarity bounds",
			req:  quill.AnswerRequest{Query: "q", MinSimilarity: floatPtr(0.8)},
		},
		{
			name:    "similarity too high",
			req:     quill.AnswerRequest{Query: "q", MinSimilarity: floatPtr(1.5)},
			wantErr: true,
		},
		{
			name:    "similarity negative",
			req:     quill.AnswerRequest{Query: "q", MinSimilarity: floatPtr(-0.1)},
			wantErr: true,
		},
		{
			name: "max documents zero",
			req:  quill.AnswerRequest{Query: "q", MaxDocuments: intPtr(0)},
		},
		{
			name:    "max documents negative",
			req:     quill.AnswerRequest{Query: "q", MaxDocuments: intPtr(-1)},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, quill.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
