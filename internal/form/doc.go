// Package form owns the multi-step waitlist form: per-step validation rules,
// the session state machine that gates step transitions, and the stores that
// hold sessions between requests.
//
// A Session is created when a visitor opens the form, mutated by field
// patches and advance/retreat, frozen and handed to the submission pipeline
// on the last step, and becomes terminal once the pipeline reports success.
// Abandoned sessions expire by TTL.
package form
