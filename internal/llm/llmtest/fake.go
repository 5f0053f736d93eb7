// Package llmtest provides deterministic test doubles for the llm package.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/prompt-optimizer/internal/llm"
)

// Result is one scripted reply
type Result struct {
	Text string
	Err  error
}

// Call records one request seen by a fake
type Call struct {
	Prompt string
	Tier   llm.ModelTier
	JSON   bool
}

// ErrScriptExhausted is returned once every scripted result has been consumed
var ErrScriptExhausted = errors.New("llmtest: no scripted result left")

type recorder struct {
	mu     sync.Mutex
	calls  []Call
	script []Result
}

func (r *recorder) next(call Call) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if len(r.script) == 0 {
		return "", ErrScriptExhausted
	}
	res := r.script[0]
	if len(r.script) > 1 {
		r.script = r.script[1:]
	} else {
		r.script = nil
	}
	return res.Text, res.Err
}

// Calls returns a copy of the recorded calls
func (r *recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallCount returns how many requests were made
func (r *recorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Client is a scripted llm.Client. Each call consumes the next Result.
type Client struct {
	recorder
	Model  string
	Closed bool
}

// NewClient returns a Client that replies with script in order
func NewClient(script ...Result) *Client {
	return &Client{recorder: recorder{script: script}, Model: "fake-model"}
}

func (c *Client) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.next(Call{Prompt: prompt, Tier: tier})
}

func (c *Client) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.next(Call{Prompt: prompt, Tier: tier, JSON: true})
}

func (c *Client) GetModel(llm.ModelTier) string { return c.Model }

func (c *Client) Close() error {
	c.Closed = true
	return nil
}

// Generator is an llm.Generator double. Handler, when set, answers every call; otherwise the
// script is consumed in order.
type Generator struct {
	recorder
	Unavailable bool
	Handler     func(call Call) (string, error)
}

// NewGenerator returns an available Generator replying with script in order
func NewGenerator(script ...Result) *Generator {
	return &Generator{recorder: recorder{script: script}}
}

// Offline returns a Generator that reports the AI as unavailable
func Offline() *Generator {
	return &Generator{Unavailable: true}
}

func (g *Generator) Available() bool { return !g.Unavailable }

func (g *Generator) Generate(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return g.do(ctx, Call{Prompt: prompt, Tier: tier})
}

func (g *Generator) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return g.do(ctx, Call{Prompt: prompt, Tier: tier, JSON: true})
}

func (g *Generator) do(ctx context.Context, call Call) (string, error) {
	if g.Unavailable {
		return "", &llm.UnavailableError{}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.Handler != nil {
		g.mu.Lock()
		g.calls = append(g.calls, call)
		g.mu.Unlock()
		return g.Handler(call)
	}
	return g.next(call)
}

var (
	_ llm.Client    = (*Client)(nil)
	_ llm.Generator = (*Generator)(nil)
)
