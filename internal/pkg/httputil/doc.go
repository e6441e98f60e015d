// Package httputil provides shared HTTP response/request helpers for the
// waitlist handlers.
//
// Handlers write every JSON body through these helpers so that success
// envelopes ({"success": true}) and error envelopes ({"error": "..."}) look
// the same on every endpoint, and so that 5xx details stay in the server log.
package httputil
