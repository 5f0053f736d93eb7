// Package modelfamily classifies free-text target model names into families that share
// prompting conventions.
package modelfamily

import "strings"

// Family is a group of target models with shared prompt conventions
type Family string

const (
	Image   Family = "image"
	Text    Family = "text"
	Generic Family = "generic"
)

type rule struct {
	family    Family
	fragments []string
}

// rules are checked in order; image fragments win so "gemini imagen" is an image model.
var rules = []rule{
	{family: Image, fragments: []string{
		"dall-e", "dalle", "midjourney", "stable diffusion", "stable-diffusion", "sdxl", "imagen", "flux",
	}},
	{family: Text, fragments: []string{
		"gpt", "claude", "gemini", "llama", "mistral",
	}},
}

// Classify returns the family of targetModel by case-insensitive substring match
func Classify(targetModel string) Family {
	name := strings.ToLower(strings.TrimSpace(targetModel))
	for _, r := range rules {
		for _, fragment := range r.fragments {
			if strings.Contains(name, fragment) {
				return r.family
			}
		}
	}
	return Generic
}
