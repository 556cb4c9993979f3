// Package domain defines the core business types for the adpilot
// recommendation engine.
//
// Types in this package are pure value objects with no behavior beyond
// small derived accessors. They are the shared language between the
// analyzers, the knowledge base, the tracker, and the repositories.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Derived-value methods are allowed (they're pure functions on the type)
//   - Constants and enums belong here
package domain
