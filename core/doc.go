// Package core defines the shared domain model of the switchboard engine:
// agent descriptors, routing decisions, conversation messages, execution
// results and the store interfaces the engine consumes. It contains no
// behavior beyond small value-type helpers so that every other package can
// depend on it without cycles.
package core
