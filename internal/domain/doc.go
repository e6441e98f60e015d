// Package domain defines the core business types for the Kyozo waitlist.
//
// Types in this package are value objects with no database dependencies and
// no HTTP concerns. They are the shared language between the form state
// machine, the submission pipeline, the store adapters and the handlers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Small pure helpers on the types are allowed
//   - Constants, enums and option catalogs belong here
package domain
