// Package store persists waitlist submissions.
//
// Every adapter assigns the submission id and timestamp on Create and lists
// newest first. Implementations: in-memory, DynamoDB, PostgreSQL and the
// Firestore REST API. S3Archiver keeps copies of admin CSV exports.
package store
