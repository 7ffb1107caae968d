// Package service implements the account use cases: registration, lookup,
// partial update, paging, deletion, credential checks, and stateless
// token sessions.
//
// Services depend only on the store.AccountStore contract and the auth
// package's CredentialCodec and JWTService, never on a concrete database.
// Store failures are translated at this boundary into the sentinel errors
// declared in errors.go, with the original error kept in the chain.
package service
