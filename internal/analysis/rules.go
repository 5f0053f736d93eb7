// Package analysis provides the rule-based prompt analyzer. It never calls the AI and is
// the baseline that AI-assisted improvement is measured against.
package analysis

import "github.com/jonathan/prompt-optimizer/internal/types"

// Element names reported in MissingElements
const (
	ElementStyle             = "style"
	ElementComposition       = "composition"
	ElementBackground        = "background"
	ElementQualityIndicators = "quality_indicators"
	ElementTone              = "tone"
	ElementFormat            = "format"
	ElementContext           = "context"
	ElementDuration          = "duration"
	ElementTechnicalSpecs    = "technical_specs"
)

// ElementRule detects one prompt element by keyword membership
type ElementRule struct {
	Name     string
	Keywords []string
}

var styleKeywords = []string{
	"style", "styled", "realistic", "photorealistic", "cartoon", "anime", "watercolor", "oil painting",
	"sketch", "digital art", "3d render", "minimalist", "abstract", "vintage", "retro", "cinematic",
	"illustration", "pixel art", "impressionist", "noir", "surreal",
}

// ElementRules holds the missing-element tables per media type
var ElementRules = map[types.MediaType][]ElementRule{
	types.MediaImage: {
		{Name: ElementStyle, Keywords: styleKeywords},
		{Name: ElementComposition, Keywords: []string{
			"close-up", "close up", "wide shot", "wide angle", "portrait", "landscape", "centered",
			"rule of thirds", "angle", "perspective", "view", "framing", "composition", "foreground",
			"aerial", "overhead", "full body",
		}},
		{Name: ElementBackground, Keywords: []string{
			"background", "backdrop", "setting", "scene", "environment", "behind", "surrounded",
			"in a", "on a", "at the",
		}},
		{Name: ElementQualityIndicators, Keywords: []string{
			"high quality", "detailed", "highly detailed", "4k", "8k", "hd", "high resolution",
			"sharp", "masterpiece", "professional", "ultra", "crisp",
		}},
	},
	types.MediaText: {
		{Name: ElementTone, Keywords: []string{
			"tone", "formal", "informal", "casual", "friendly", "professional", "humorous", "funny",
			"serious", "persuasive", "playful", "academic", "conversational", "empathetic",
		}},
		{Name: ElementFormat, Keywords: []string{
			"list", "bullet", "bullets", "paragraph", "paragraphs", "essay", "email", "table", "format",
			"words", "summary", "outline", "steps", "sections", "headings", "json", "markdown", "poem",
		}},
		{Name: ElementContext, Keywords: []string{
			"audience", "for beginners", "for experts", "for a", "for my", "because", "purpose",
			"context", "background", "as a", "targeting", "intended",
		}},
	},
	types.MediaVideo: {
		{Name: ElementDuration, Keywords: durationKeywords},
		{Name: ElementStyle, Keywords: styleKeywords},
		{Name: ElementTechnicalSpecs, Keywords: []string{
			"fps", "frame rate", "resolution", "1080p", "720p", "4k", "aspect ratio", "16:9", "9:16",
			"slow motion", "tracking shot", "drone", "mp4",
		}},
	},
	types.MediaAudio: {
		{Name: ElementDuration, Keywords: durationKeywords},
		{Name: ElementStyle, Keywords: append([]string{
			"genre", "acoustic", "electronic", "orchestral", "jazz", "lofi", "lo-fi", "ambient", "rock",
		}, styleKeywords...)},
		{Name: ElementTechnicalSpecs, Keywords: []string{
			"bpm", "tempo", "khz", "sample rate", "stereo", "mono", "wav", "mp3", "bitrate", "key of",
			"instrument", "instruments",
		}},
	},
}

var durationKeywords = []string{
	"second", "seconds", "minute", "minutes", "duration", "length", "long", "short", "loop", "intro",
}

// imperativeVerbs open a command that should be followed by an article before a common noun
var imperativeVerbs = map[string]bool{
	"draw": true, "create": true, "make": true, "generate": true, "write": true, "paint": true,
	"show": true, "design": true, "describe": true, "render": true, "compose": true,
}

var commonNouns = map[string]bool{
	"cat": true, "dog": true, "house": true, "car": true, "tree": true, "person": true, "man": true,
	"woman": true, "picture": true, "image": true, "story": true, "poem": true, "city": true,
	"portrait": true, "bird": true, "flower": true, "logo": true, "song": true, "video": true,
	"essay": true, "letter": true, "robot": true, "dragon": true, "castle": true,
}

// InformalPhrases are filler openings flagged by the grammar check
var InformalPhrases = []string{"draw me", "make me", "give me"}

var descriptiveWords = map[string]bool{
	"beautiful": true, "detailed": true, "vibrant": true, "colorful": true, "dark": true,
	"bright": true, "soft": true, "dramatic": true, "elegant": true, "realistic": true, "vivid": true,
	"nice": true, "very": true, "large": true, "small": true, "tiny": true, "huge": true, "old": true,
	"ancient": true, "modern": true, "cozy": true, "serene": true, "moody": true, "warm": true,
	"cold": true, "glowing": true, "intricate": true, "sleek": true, "rustic": true, "futuristic": true,
}

// IsImperativeVerb reports whether word (lowercase) opens a command
func IsImperativeVerb(word string) bool {
	return imperativeVerbs[word]
}

// IsCommonNoun reports whether word (lowercase) is a countable noun that takes an article
func IsCommonNoun(word string) bool {
	return commonNouns[word]
}
