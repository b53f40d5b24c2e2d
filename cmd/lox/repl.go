package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/parser"
)

const (
	promptMain = "==> "
	promptCont = "... "

	// exitInterrupted is the conventional status for a Ctrl-C exit.
	exitInterrupted = 130
)

const replHelp = `Enter Lox declarations and statements. Input continues on the next line
until it parses as a complete program.
  :help     show this message
  :globals  list the names defined in the session
  :quit     leave the session (Ctrl-D also works)
`

// lineReader is the part of liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

func runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "lox repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return driver.ExitUsage
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	status := replLoop(ln, driver.NewSession(os.Stdout), os.Stdout, os.Stderr, ln.AppendHistory)

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return status
}

// replLoop evaluates entries until end of input, :quit, an interrupt, or an
// internal error. Program errors are reported and the session continues.
func replLoop(in lineReader, session *driver.Session, stdout, stderr io.Writer, remember func(string)) int {
	for {
		entry, err := readEntry(in)
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(stdout)
			return driver.ExitOK
		case errors.Is(err, liner.ErrPromptAborted):
			return exitInterrupted
		case err != nil:
			fmt.Fprintf(stderr, "error: %v\n", err)
			return driver.ExitFailure
		}

		trimmed := strings.TrimSpace(entry)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, ":"):
			if quit := replCommand(trimmed, session, stdout, stderr); quit {
				return driver.ExitOK
			}
			continue
		}

		if remember != nil {
			remember(strings.ReplaceAll(entry, "\n", " "))
		}
		if err := session.Eval(entry); err != nil {
			fmt.Fprintln(stderr, err.Error())
			if driver.IsFatal(err) {
				return driver.ExitSoftware
			}
		}
	}
}

func replCommand(cmd string, session *driver.Session, stdout, stderr io.Writer) (quit bool) {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case ":quit", ":exit", ":q":
		return true
	case ":help":
		fmt.Fprint(stdout, replHelp)
	case ":globals":
		fmt.Fprintln(stdout, strings.Join(session.Globals(), " "))
	default:
		fmt.Fprintf(stderr, "unknown command %s. Type :help for help.\n", cmd)
	}
	return false
}

// readEntry reads lines until the buffer parses, or fails for a reason more
// input cannot fix. The buffer is returned either way so the caller reports
// the error.
func readEntry(in lineReader) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := in.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, nil
		}
		if _, perr := parser.ParseProgram(src); perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return src, nil
	}
}

func historyPath() string {
	if path := strings.TrimSpace(os.Getenv("LOX_HISTORY")); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lox_history")
}
