// Package postgres provides the PostgreSQL implementation of store.AccountStore.
// It runs plain SQL through database/sql over the pgx stdlib driver, maps
// driver errors to store sentinel errors, and applies the embedded goose
// migrations that define the accounts schema.
package postgres
