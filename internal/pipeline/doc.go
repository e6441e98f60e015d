// Package pipeline runs a completed form through identity acquisition,
// persistence and a best-effort notification, strictly in that order.
//
// The stored record is authoritative. A failed notification is recorded in
// the NotificationLog and never changes the outcome reported to the caller.
package pipeline
