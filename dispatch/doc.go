// Package dispatch executes specialist agents and merges their answers.
//
// Executor runs one agent: it grounds the agent's system prompt with
// knowledge snippets and calls the generative backend. Dispatcher fans out
// over the Executor concurrently, isolating every branch so one failing or
// slow agent never affects the others, and joins results in input order.
// Synthesizer reduces the dispatcher's results to a single answer and is
// designed to never fail: on a merge failure it degrades to a deterministic
// labeled concatenation.
package dispatch
