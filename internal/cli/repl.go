package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with
// a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isUnlocked() bool
	Unlock(ctx context.Context) error
	Sync(ctx context.Context, shareID string) error
	List(ctx context.Context, shareID string) error
	Show(ctx context.Context, shareID, itemID string) error
	AddLogin(ctx context.Context, shareID string) error
	AddNote(ctx context.Context, shareID string) error
}

const helpLocked = "Available commands: unlock, exit"
const helpUnlocked = "Available commands: sync <share>, list <share>, show <share> <id>, addlogin <share>, addnote <share>, exit"

// runREPL starts a simple read, eval, print loop. It reads a line from the
// provided scanner, parses the first token as the command, and dispatches to
// methods on 'a'. Unknown commands are reported back to the user. The loop
// exits on scanner EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	printlnFn("PassVault CLI (type 'help' for commands)")

	for {
		fmt.Print("passvault > ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn(helpUnlocked)
			} else {
				printlnFn(helpLocked)
			}
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "unlock":
			err = a.Unlock(ctx)
		case "sync":
			if len(args) != 1 {
				printlnFn("Usage: sync <share>")
				continue
			}
			err = requireUnlocked(a, func() error { return a.Sync(ctx, args[0]) })
		case "list":
			if len(args) != 1 {
				printlnFn("Usage: list <share>")
				continue
			}
			err = requireUnlocked(a, func() error { return a.List(ctx, args[0]) })
		case "show":
			if len(args) != 2 {
				printlnFn("Usage: show <share> <id>")
				continue
			}
			err = requireUnlocked(a, func() error { return a.Show(ctx, args[0], args[1]) })
		case "addlogin":
			if len(args) != 1 {
				printlnFn("Usage: addlogin <share>")
				continue
			}
			err = requireUnlocked(a, func() error { return a.AddLogin(ctx, args[0]) })
		case "addnote":
			if len(args) != 1 {
				printlnFn("Usage: addnote <share>")
				continue
			}
			err = requireUnlocked(a, func() error { return a.AddNote(ctx, args[0]) })
		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}

var errLocked = fmt.Errorf("vault is locked, run 'unlock' first")

func requireUnlocked(a execIface, fn func() error) error {
	if !a.isUnlocked() {
		return errLocked
	}
	return fn()
}
