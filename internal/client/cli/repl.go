package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	showError(err error)

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error

	Add(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Audio(ctx context.Context, args []string) error
	RemoveAudio(ctx context.Context, args []string) error

	Insight(ctx context.Context, args []string) error
	Regenerate(ctx context.Context, args []string) error
	Weekly(ctx context.Context) error
	Stats(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: signup, login, exit"
	helpLoggedIn  = "Available commands: add, (l)ist|history [emotion], show <id>, edit <id>, delete <id>, " +
		"refresh [days], audio <id> <path> [seconds], rmaudio <id>, insight <id>, regenerate <id>, " +
		"weekly, stats, me, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the mood journal CLI.
//
// It reads a line from reader, parses the first token as the command and the
// rest as its arguments, and dispatches to methods on 'a'. Prompts issued by
// a command read from the same reader. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                   show available commands
//	  - signup | register      create an account
//	  - login                  authenticate
//	  - exit | quit            leave the program
//
//	Logged in:
//	  - add                    record a mood
//	  - list | l | history     show the history grouped by day, optionally by emotion
//	  - show <id>              show one entry
//	  - edit <id>              change mood, note or date
//	  - delete <id>            delete an entry
//	  - refresh [days]         reload entries from the server
//	  - audio <id> <path>      attach a voice note
//	  - rmaudio <id>           remove a voice note
//	  - insight <id>           show the AI insight of an entry
//	  - regenerate <id>        ask for a new insight
//	  - weekly | stats         weekly summary and mood statistics
//	  - me                     show the profile
//	  - logout                 log out
//
// Entry ids may be shortened to any unique prefix. Errors returned by command
// handlers are passed to a.showError and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mj %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if ctx.Err() != nil {
			return
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "signup", "register":
			a.showError(a.Signup(ctx))
			continue
		case "login":
			a.showError(a.Login(ctx))
			continue
		}

		handler, ok := loggedInCommand(a, cmd, args)
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !a.isLoggedIn() {
			printlnFn("Please log in first (type 'login' or 'signup').")
			continue
		}
		a.showError(handler(ctx))
	}
}

// loggedInCommand maps cmd to its handler for commands that need a session.
func loggedInCommand(a execIface, cmd string, args []string) (func(context.Context) error, bool) {
	withArgs := func(fn func(context.Context, []string) error) func(context.Context) error {
		return func(ctx context.Context) error { return fn(ctx, args) }
	}

	switch cmd {
	case "logout":
		return a.Logout, true
	case "me":
		return a.Me, true
	case "add":
		return a.Add, true
	case "l", "list", "history":
		return withArgs(a.List), true
	case "show":
		return withArgs(a.Show), true
	case "edit":
		return withArgs(a.Edit), true
	case "delete", "rm":
		return withArgs(a.Delete), true
	case "refresh", "sync":
		return withArgs(a.Refresh), true
	case "audio":
		return withArgs(a.Audio), true
	case "rmaudio":
		return withArgs(a.RemoveAudio), true
	case "insight":
		return withArgs(a.Insight), true
	case "regenerate":
		return withArgs(a.Regenerate), true
	case "weekly":
		return a.Weekly, true
	case "stats":
		return a.Stats, true
	default:
		return nil, false
	}
}
