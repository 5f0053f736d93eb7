package types

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validInput() PromptInput {
	return PromptInput{
		UserID:         uuid.New(),
		OriginalPrompt: "a cat on a sofa",
		TargetModel:    "dall-e-3",
		MediaType:      MediaImage,
	}
}

func TestQuickRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*QuickRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(*QuickRequest) {}},
		{name: "missing user", mutate: func(r *QuickRequest) { r.UserID = uuid.Nil }, wantErr: true},
		{name: "empty prompt", mutate: func(r *QuickRequest) { r.OriginalPrompt = "" }, wantErr: true},
		{name: "prompt too long", mutate: func(r *QuickRequest) { r.OriginalPrompt = strings.Repeat("a ", 2501) }, wantErr: true},
		{name: "missing model", mutate: func(r *QuickRequest) { r.TargetModel = "" }, wantErr: true},
		{name: "unknown media", mutate: func(r *QuickRequest) { r.MediaType = "hologram" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &QuickRequest{PromptInput: validInput()}
			tt.mutate(req)
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildRequest_ValidateAnswersAndDetails(t *testing.T) {
	req := &BuildRequest{
		PromptInput: validInput(),
		Answers: map[string]Answer{
			"style": {Type: AnswerCustom, Value: "watercolor"},
		},
	}
	assert.NoError(t, req.Validate())

	req.Answers["mood"] = Answer{Type: "maybe"}
	assert.Error(t, req.Validate())

	delete(req.Answers, "mood")
	req.AdditionalDetails = strings.Repeat("x", MaxDetailsLength+1)
	assert.Error(t, req.Validate())
}

func TestFeedbackRequest_Validate(t *testing.T) {
	assert.NoError(t, (&FeedbackRequest{Rating: 5}).Validate())
	assert.Error(t, (&FeedbackRequest{Rating: 0}).Validate())
	assert.Error(t, (&FeedbackRequest{Rating: 6}).Validate())
}

func TestApplyRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ApplyRequest{Visibility: "public", Tags: []string{"cats"}}).Validate())
	assert.Error(t, (&ApplyRequest{Visibility: "friends"}).Validate())
	assert.Error(t, (&ApplyRequest{}).Validate())
}

func TestAnswer_Text(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   string
	}{
		{"custom text wins", Answer{Type: AnswerCustom, Value: "other", CustomText: "ink wash"}, "ink wash"},
		{"option value", Answer{Type: AnswerOption, Value: "watercolor"}, "watercolor"},
		{"no preference", Answer{Type: AnswerOption, Value: OptionNoPreference}, ""},
		{"default", Answer{Type: AnswerDefault, Value: "photorealistic"}, ""},
		{"skipped", Answer{Type: AnswerSkipped}, ""},
		{"no preference ignores custom text", Answer{Type: AnswerCustom, Value: OptionNoPreference, CustomText: "ink wash"}, ""},
		{"skipped value ignores custom text", Answer{Type: AnswerOption, Value: "skipped", CustomText: "sepia"}, ""},
		{"other without text", Answer{Type: AnswerOption, Value: OptionOther}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.answer.Text())
		})
	}
}
