// Package client talks to the gophauth server for the CLI.
//
// GRPCClient keeps the connection and the current access token. The token is
// attached to every call by a unary interceptor and forgotten on logout or
// when the server stops accepting it. gRPC status codes are mapped to the
// sentinel errors in errors.go so the CLI can match them with errors.Is.
package client
