// Package store defines the persistence contract for accounts.
// The interfaces here keep the account services independent of the
// database technology; implementations live under internal/platform.
//
// All implementations report failures with the sentinel errors in this
// package so that callers can match them with errors.Is regardless of
// the backend that produced them.
package store
