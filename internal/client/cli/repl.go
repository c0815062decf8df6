package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Upload(ctx context.Context) error
	List(ctx context.Context) error
	ListUnreviewed(ctx context.Context) error
	Show(ctx context.Context) error
	Correct(ctx context.Context) error
	Review(ctx context.Context) error
	Reopen(ctx context.Context) error
	Download(ctx context.Context) error
	Delete(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the InvoiceKeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help              show available commands
//	  - register          create an account
//	  - login             authenticate
//	  - exit | quit       leave the program
//
//	Logged in:
//	  - help              show available commands
//	  - upload            upload a document and record the invoice
//	  - list              list own invoices
//	  - list unreviewed   list only the unreviewed backlog
//	  - show              show a single invoice (interactive ID prompt)
//	  - correct           fix one extracted field
//	  - review | reopen   flip the review latch
//	  - download          save the stored document locally
//	  - delete            delete an invoice
//	  - logout            log out
//	  - exit | quit       leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ik %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: upload, (l)ist, list unreviewed, show, correct, review, reopen, download, delete, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "l", "list":
			if len(parts) > 1 && parts[1] == "unreviewed" {
				_ = a.ListUnreviewed(ctx)
			} else {
				_ = a.List(ctx)
			}

		case "show":
			_ = a.Show(ctx)

		case "correct":
			_ = a.Correct(ctx)

		case "review":
			_ = a.Review(ctx)

		case "reopen":
			_ = a.Reopen(ctx)

		case "download":
			_ = a.Download(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
