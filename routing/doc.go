// Package routing decides which specialist agent(s) should answer a message.
//
// Two strategies exist. The KeywordScorer is a pure, deterministic function
// over static weighted phrase tables; it has no dependencies and is always
// available. The Router asks a generative backend for a structured decision
// and silently degrades to the scorer whenever the backend fails or returns
// output that does not validate. Callers never see an error and never branch
// on which strategy fired.
package routing
