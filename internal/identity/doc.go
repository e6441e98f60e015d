// Package identity is the boundary to the identity provider: anonymous
// sign-in for form submitters and email/password checks for operators.
//
// Provider failures surface as *Error carrying a provider-neutral Code so
// callers can map them to user-facing text without parsing messages.
package identity
