// Package model defines the provider-agnostic abstraction for the generative
// backends the engine calls: routing, agent execution and synthesis all go
// through the same Backend interface.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Normalize provider failures behind core.BackendError
//   - Facilitate lightweight mocking for tests (MockBackend)
//
// Providers (e.g. OpenAI, Anthropic) implement the Backend interface from
// this package so higher layers (routing, dispatch, orchestrator) remain
// decoupled from vendor SDKs.
package model
