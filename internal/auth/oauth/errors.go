package oauth

import "errors"

var (
	ErrNotConfigured  = errors.New("google sign-in is not configured")
	ErrExchangeFailed = errors.New("oauth code exchange failed")
	ErrIdentityFailed = errors.New("oauth identity request failed")
)
