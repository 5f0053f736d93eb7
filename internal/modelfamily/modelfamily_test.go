package modelfamily

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		model string
		want  Family
	}{
		{"DALL-E 3", Image},
		{"midjourney v6", Image},
		{"Stable Diffusion XL", Image},
		{"sdxl-turbo", Image},
		{"imagen-3", Image},
		{"gpt-4o", Text},
		{"Claude 3.5 Sonnet", Text},
		{"gemini-2.5-pro", Text},
		{"llama-3-70b", Text},
		{"runway gen-3", Generic},
		{"", Generic},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.model))
		})
	}
}
