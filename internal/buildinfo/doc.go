// Package buildinfo implements the version-resolution and change-aggregation
// engine behind buildnotes.
//
// This package implements:
//   - Tag grammar parsing into structured versions (parser.go)
//   - Baseline selection under release/pre-release policy (resolver.go)
//   - Deduplication and categorization of change units and linked issues
//     into changes, bug-fixes, and known issues (aggregate.go)
//   - Orchestration of connector fetches into a BuildInformation value
//     (assembler.go)
//
// The engine depends only on the abstract Connector capability; the concrete
// transports live under internal/connector.
package buildinfo
