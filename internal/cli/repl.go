package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Show(ctx context.Context) error
	Update(ctx context.Context) error
	Export(ctx context.Context) error
	Delete(ctx context.Context) error
	Status(ctx context.Context) error
	Purchases(ctx context.Context) error
	AddPurchase(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Vinylvault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, out io.Writer) {
	fmt.Fprintln(out, "Welcome to Vinylvault (type 'help' for commands)")

	for {
		fmt.Fprintf(out, "vv %s> ", statusFn())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: show, update, export, status, purchases, addpurchase, delete, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, verify, login, status, exit")
			}
		case "register":
			a.Register(ctx)
		case "verify":
			a.Verify(ctx)
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "show":
			a.Show(ctx)
		case "update":
			a.Update(ctx)
		case "export":
			a.Export(ctx)
		case "delete":
			a.Delete(ctx)
		case "status":
			a.Status(ctx)
		case "purchases":
			a.Purchases(ctx)
		case "addpurchase":
			a.AddPurchase(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", parts[0])
		}
	}
}
