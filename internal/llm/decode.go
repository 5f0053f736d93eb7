package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// OptimizationResponse is the structured reply to a quick-optimization request
type OptimizationResponse struct {
	OptimizedPrompt   string   `json:"optimizedPrompt"`
	IsValid           bool     `json:"isValid"`
	ValidationMessage string   `json:"validationMessage,omitempty"`
	Improvements      []string `json:"improvements"`
	QualityScore      int      `json:"qualityScore"`
}

// DecodeStrategy is one rung of the decode ladder
type DecodeStrategy struct {
	Name   string
	Decode func(raw string) (OptimizationResponse, error)
}

// StrategyAttempt records a failed rung
type StrategyAttempt struct {
	Strategy string
	Err      error
}

// DecodeResult is the typed outcome of running the ladder
type DecodeResult struct {
	Response OptimizationResponse
	Strategy string
	Failed   []StrategyAttempt
}

// Strategy names
const (
	StrategyDirect          = "direct"
	StrategyRepairQuotes    = "repair_quotes"
	StrategyFieldExtraction = "field_extraction"
)

// DefaultDecodeLadder is applied in order until one strategy succeeds
var DefaultDecodeLadder = []DecodeStrategy{
	{Name: StrategyDirect, Decode: decodeDirect},
	{Name: StrategyRepairQuotes, Decode: decodeRepaired},
	{Name: StrategyFieldExtraction, Decode: decodeFields},
}

const excerptLimit = 200

// DecodeOptimization runs DefaultDecodeLadder over raw
func DecodeOptimization(raw string) (DecodeResult, error) {
	return DecodeWith(DefaultDecodeLadder, raw)
}

// DecodeWith runs ladder over raw and returns the first success. Exhausting the ladder yields
// a *DecodeError carrying an excerpt of raw.
func DecodeWith(ladder []DecodeStrategy, raw string) (DecodeResult, error) {
	var result DecodeResult
	for _, strategy := range ladder {
		resp, err := strategy.Decode(raw)
		if err == nil {
			result.Response = resp
			result.Strategy = strategy.Name
			return result, nil
		}
		result.Failed = append(result.Failed, StrategyAttempt{Strategy: strategy.Name, Err: err})
	}

	var causes []error
	for _, f := range result.Failed {
		causes = append(causes, fmt.Errorf("%s: %w", f.Strategy, f.Err))
	}
	return result, &DecodeError{
		Message: "AI response could not be parsed",
		Excerpt: Excerpt(raw, excerptLimit),
		Cause:   errors.Join(causes...),
	}
}

// NormalizeJSON returns a syntactically valid JSON document extracted from raw, trying the
// fenced/outermost span first and the quote repair second.
func NormalizeJSON(raw string) (string, error) {
	candidate := CleanJSONBlock(raw)
	if json.Valid([]byte(candidate)) {
		return candidate, nil
	}
	if obj := OuterObject(raw); obj != "" {
		if json.Valid([]byte(obj)) {
			return obj, nil
		}
		candidate = obj
	}
	repaired := repairQuotes(candidate)
	if json.Valid([]byte(repaired)) {
		return repaired, nil
	}
	return "", &DecodeError{Message: "AI response is not valid JSON", Excerpt: Excerpt(raw, excerptLimit)}
}

// DecodeJSON decodes an arbitrary JSON payload from raw into v
func DecodeJSON(raw string, v any) error {
	doc, err := NormalizeJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(doc), v); err != nil {
		return &DecodeError{Message: "AI response has an unexpected shape", Excerpt: Excerpt(raw, excerptLimit), Cause: err}
	}
	return nil
}

type wireOptimization struct {
	OptimizedPrompt   *string  `json:"optimizedPrompt"`
	IsValid           *bool    `json:"isValid"`
	ValidationMessage string   `json:"validationMessage"`
	Improvements      []string `json:"improvements"`
	QualityScore      float64  `json:"qualityScore"`
}

func (w wireOptimization) toResponse() (OptimizationResponse, error) {
	resp := OptimizationResponse{
		IsValid:           true,
		ValidationMessage: w.ValidationMessage,
		Improvements:      w.Improvements,
		QualityScore:      clampScore(w.QualityScore),
	}
	if w.IsValid != nil {
		resp.IsValid = *w.IsValid
	}
	if resp.Improvements == nil {
		resp.Improvements = []string{}
	}
	if w.OptimizedPrompt == nil {
		// A rejection may legitimately omit the rewrite.
		if !resp.IsValid {
			return resp, nil
		}
		return resp, errors.New("missing optimizedPrompt")
	}
	resp.OptimizedPrompt = strings.TrimSpace(*w.OptimizedPrompt)
	return resp, nil
}

func decodeDirect(raw string) (OptimizationResponse, error) {
	obj := OuterObject(raw)
	if obj == "" {
		return OptimizationResponse{}, errors.New("no JSON object found")
	}
	return unmarshalOptimization(obj)
}

func decodeRepaired(raw string) (OptimizationResponse, error) {
	obj := OuterObject(raw)
	if obj == "" {
		return OptimizationResponse{}, errors.New("no JSON object found")
	}
	return unmarshalOptimization(repairQuotes(obj))
}

func unmarshalOptimization(doc string) (OptimizationResponse, error) {
	var w wireOptimization
	if err := json.Unmarshal([]byte(doc), &w); err != nil {
		return OptimizationResponse{}, err
	}
	return w.toResponse()
}

// repairQuotes escapes double quotes inside string values that are not followed by a JSON
// delimiter.
func repairQuotes(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 16)

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !inString {
			if ch == '"' {
				inString = true
			}
			sb.WriteByte(ch)
			continue
		}

		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			if closesString(s, i+1) {
				inString = false
			} else {
				sb.WriteByte('\\')
			}
		case ch == '\n':
			sb.WriteString(`\n`)
			continue
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}

func closesString(s string, from int) bool {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case ' ', '\t', '\r', '\n':
			continue
		case ',', '}', ']', ':':
			return true
		default:
			return false
		}
	}
	return true
}

var (
	fieldPrompt       = regexp.MustCompile(`(?s)"optimizedPrompt"\s*:\s*"(.*?)"\s*(?:,\s*"[A-Za-z]+"\s*:|\}|$)`)
	fieldMessage      = regexp.MustCompile(`(?s)"validationMessage"\s*:\s*"(.*?)"\s*(?:,\s*"[A-Za-z]+"\s*:|\}|$)`)
	fieldIsValid      = regexp.MustCompile(`"isValid"\s*:\s*(true|false)`)
	fieldImprovements = regexp.MustCompile(`(?s)"improvements"\s*:\s*\[(.*?)\]`)
	fieldScore        = regexp.MustCompile(`"qualityScore"\s*:\s*(-?\d+(?:\.\d+)?)`)
	stringItem        = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

func decodeFields(raw string) (OptimizationResponse, error) {
	text := stripCodeFence(strings.TrimSpace(raw))

	m := fieldPrompt.FindStringSubmatch(text)
	if m == nil {
		return OptimizationResponse{}, errors.New("optimizedPrompt field not found")
	}

	resp := OptimizationResponse{
		OptimizedPrompt: strings.TrimSpace(unescapeJSONString(m[1])),
		IsValid:         true,
		Improvements:    []string{},
	}
	if m := fieldIsValid.FindStringSubmatch(text); m != nil {
		resp.IsValid = m[1] == "true"
	}
	if m := fieldMessage.FindStringSubmatch(text); m != nil {
		resp.ValidationMessage = unescapeJSONString(m[1])
	}
	if m := fieldImprovements.FindStringSubmatch(text); m != nil {
		for _, item := range stringItem.FindAllStringSubmatch(m[1], -1) {
			resp.Improvements = append(resp.Improvements, unescapeJSONString(item[1]))
		}
	}
	if m := fieldScore.FindStringSubmatch(text); m != nil {
		var score float64
		if _, err := fmt.Sscanf(m[1], "%g", &score); err == nil {
			resp.QualityScore = clampScore(score)
		}
	}
	return resp, nil
}

func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err == nil {
		return out
	}
	r := strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\t`, "\t", `\\`, `\`)
	return r.Replace(s)
}

func clampScore(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
