// Package cli provides the interactive gophauth command-line client.
//
// The REPL accepts register, login, logout, me, delete, ping, help and exit.
// A background watcher pings the server and shows online or offline status
// in the prompt. The REPL is started via App.Run(ctx), which blocks until the
// user exits or stdin is closed.
package cli
