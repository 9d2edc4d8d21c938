package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Delete(ctx context.Context) error
	Ping(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// Handler errors are reported and the loop continues. It returns on EOF or
// when the user types "exit" or "quit".
//
//	Not logged in: help, register, login, ping, exit | quit
//	Logged in:     help, me, logout, delete, ping, exit | quit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ga (%s)> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, logout, delete, ping, exit")
			} else {
				printlnFn("Available commands: register, login, ping, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "me":
			cmdErr = a.Me(ctx)

		case "delete":
			cmdErr = a.Delete(ctx)

		case "ping":
			cmdErr = a.Ping(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", describe(cmdErr))
		}
	}
}
