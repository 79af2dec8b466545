package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumohq/switchboard/core"
	"github.com/lumohq/switchboard/logging"
	"github.com/lumohq/switchboard/model"
)

// ApologyResponse is returned when no agent produced a usable answer. The
// engine returns it as a successful response, never a hard error.
const ApologyResponse = "I'm sorry, but I wasn't able to generate a response to your request. Please try rephrasing, or ask me something else."

const defaultSynthesisPrompt = `You are a response synthesizer. You receive answers from several
specialist agents to the same user question. Merge their insights into one
coherent answer, resolve contradictions explicitly, and attribute an insight
to its agent where that helps the reader. Do not invent information that is
not present in the agent responses.`

// SynthesizerOptions configures a Synthesizer instance.
type SynthesizerOptions struct {
	// SystemPrompt overrides the synthesis instructions.
	SystemPrompt string
	// MaxTokens bounds the backend completion for the merge call.
	MaxTokens int64
	Logger    logging.Logger
}

// Synthesizer merges execution results into one answer. It never fails the
// orchestration: zero successes yield a fixed apology, one success passes
// through verbatim, and a failed merge degrades to a deterministic labeled
// concatenation. The backend is only called when there is something to
// reconcile.
type Synthesizer struct {
	backend model.Backend
	opts    SynthesizerOptions
}

// NewSynthesizer creates a Synthesizer over the given backend.
func NewSynthesizer(backend model.Backend, optFns ...func(o *SynthesizerOptions)) *Synthesizer {
	opts := SynthesizerOptions{
		SystemPrompt: defaultSynthesisPrompt,
		MaxTokens:    2048,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Synthesizer{backend: backend, opts: opts}
}

// Synthesize reduces the results to one response. The outcome tag records
// whether the merge ran on its intended path or degraded.
func (s *Synthesizer) Synthesize(ctx context.Context, message string, results []core.ExecutionResult) core.SynthesizedResponse {
	successes := make([]core.ExecutionResult, 0, len(results))
	for _, r := range results {
		if r.Succeeded() {
			successes = append(successes, r)
		}
	}

	switch len(successes) {
	case 0:
		return core.SynthesizedResponse{
			Content: ApologyResponse,
			Outcome: core.Degraded("no successful agent responses"),
		}
	case 1:
		return core.SynthesizedResponse{
			Content:            successes[0].Response,
			ContributingAgents: []string{successes[0].AgentID},
			Outcome:            core.OK(),
		}
	}

	agents := make([]string, len(successes))
	for i, r := range successes {
		agents[i] = r.AgentID
	}

	resp, err := s.backend.Chat(ctx, model.Request{
		SystemPrompt: s.opts.SystemPrompt,
		Messages:     []model.ChatMessage{{Role: "user", Content: buildMergeInput(message, successes)}},
		MaxTokens:    s.opts.MaxTokens,
	})
	if err != nil || resp.Text == "" {
		reason := "empty synthesis response"
		if err != nil {
			reason = err.Error()
		}
		s.opts.Logger.Warn("synthesis degraded to concatenation", "reason", reason)
		return core.SynthesizedResponse{
			Content:            concatenate(successes),
			ContributingAgents: agents,
			Outcome:            core.Degraded(reason),
		}
	}

	return core.SynthesizedResponse{
		Content:            resp.Text,
		ContributingAgents: agents,
		Outcome:            core.OK(),
	}
}

// buildMergeInput lays out the question and each labeled agent response.
func buildMergeInput(message string, successes []core.ExecutionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The user asked:\n%s\n\nSpecialist responses:\n", message)
	for _, r := range successes {
		fmt.Fprintf(&b, "\n### Response from %s\n%s\n", r.DisplayName(), r.Response)
	}
	return b.String()
}

// concatenate is the deterministic merge fallback: labeled responses joined
// by blank lines.
func concatenate(successes []core.ExecutionResult) string {
	parts := make([]string, len(successes))
	for i, r := range successes {
		parts[i] = fmt.Sprintf("**From %s:**\n%s", r.DisplayName(), r.Response)
	}
	return strings.Join(parts, "\n\n")
}
