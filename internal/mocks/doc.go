// Package mocks provides shared test doubles for the store and auth interfaces.
//
// Function-field mocks (MockJWTService, MockCredentialCodec) fall back to a
// fixed default when the corresponding field is nil. TestifyMockAccountStore
// records calls with testify/mock for tests that assert on interactions.
//
//	tokens := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return nil, auth.ErrExpiredToken
//	    },
//	}
package mocks
