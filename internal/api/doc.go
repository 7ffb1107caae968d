// Package api contains the HTTP handlers of the accounts service. Handlers
// decode and validate requests, call the account and session services, and
// render results in the shared response envelope.
package api
