// Package orchestrator wires routing, dispatch, synthesis and persistence
// into the top-level request flow.
//
// One request moves through a fixed sequence: resolve or create the
// conversation, persist the user turn, route, then either answer directly
// (no specialist applies), run a single agent, or fan out to several agents
// and synthesize. Outgoing turns are persisted before the result is
// returned; persistence failures are logged and never abort the response.
//
// All state lives on a constructed Controller instance, so multiple
// instances never interfere and tests get a fresh instance per case.
package orchestrator
