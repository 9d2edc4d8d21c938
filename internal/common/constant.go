// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// bearer string on authenticated requests.
const AccessTokenHeaderName = "access_token"
