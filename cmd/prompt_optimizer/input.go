package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/prompt-optimizer/internal/types"
)

// promptFlags are the inputs shared by every command that optimizes a prompt
type promptFlags struct {
	prompt string
	file   string
	model  string
	media  string
}

func (p *promptFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.prompt, "prompt", "p", "", "Prompt text (or pass it as arguments)")
	cmd.Flags().StringVarP(&p.file, "file", "f", "", "Read the prompt from a file")
	cmd.Flags().StringVarP(&p.model, "model", "m", "", "Target model the prompt is written for (required)")
	cmd.Flags().StringVar(&p.media, "media", string(types.MediaText), "Output media type: text, image, video or audio")
	cmd.MarkFlagsMutuallyExclusive("prompt", "file")

	if err := cmd.MarkFlagRequired("model"); err != nil {
		panic(fmt.Sprintf("failed to mark model flag as required: %v", err))
	}
}

// text resolves the prompt from --prompt, --file or the positional arguments
func (p *promptFlags) text(args []string) (string, error) {
	switch {
	case p.file != "":
		data, err := os.ReadFile(p.file)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case p.prompt != "":
		return p.prompt, nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	return "", fmt.Errorf("a prompt is required (use --prompt, --file or pass it as arguments)")
}

func (p *promptFlags) input(userID uuid.UUID, args []string) (types.PromptInput, error) {
	text, err := p.text(args)
	if err != nil {
		return types.PromptInput{}, err
	}
	return types.PromptInput{
		UserID:         userID,
		OriginalPrompt: text,
		TargetModel:    p.model,
		MediaType:      types.MediaType(strings.ToLower(strings.TrimSpace(p.media))),
	}, nil
}

// readAnswers loads a question id to answer map. A bare string value is taken as the chosen
// option; an object is decoded as a full answer.
func readAnswers(path string) (map[string]types.Answer, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers JSON: %w", err)
	}

	answers := make(map[string]types.Answer, len(raw))
	for id, value := range raw {
		var choice string
		if err := json.Unmarshal(value, &choice); err == nil {
			answers[id] = types.Answer{Type: types.AnswerOption, Value: choice}
			continue
		}
		var ans types.Answer
		if err := json.Unmarshal(value, &ans); err != nil {
			return nil, fmt.Errorf("answer %q: %w", id, err)
		}
		answers[id] = ans
	}
	return answers, nil
}
