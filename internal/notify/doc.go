// Package notify sends the transactional emails: the new-submission notice to
// the operations inbox and operator replies to submitters.
//
// Bodies are rendered with Liquid templates. Delivery goes through a Mailer:
// Resend, Amazon SES or a log-only mailer for development.
package notify
