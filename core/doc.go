// Package core defines the shared data model of the agent runtime: messages,
// decisions, session configuration and session state. It is imported by every
// other package and deliberately depends on nothing but the standard library
// and uuid generation, keeping the dependency graph acyclic.
package core
