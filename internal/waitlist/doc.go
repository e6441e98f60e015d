// Package waitlist is the application service behind the HTTP API. It owns
// the load-modify-save cycle of form sessions, hands finished drafts to the
// submission pipeline and serves the operator dashboard: listing, CSV
// export, replies and deletion.
package waitlist
