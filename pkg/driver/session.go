package driver

import (
	"errors"
	"io"

	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
)

// Exit statuses used by the CLI, following sysexits.h.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitSoftware = 70
)

// Session owns one interpreter whose global frame persists across every
// program it runs.
type Session struct {
	interp *interpreter.Interpreter
}

// NewSession returns a session printing to stdout.
func NewSession(stdout io.Writer) *Session {
	interp := interpreter.New()
	interp.SetOutput(stdout)
	return &Session{interp: interp}
}

// Interpreter exposes the underlying interpreter, e.g. to register natives.
func (s *Session) Interpreter() *interpreter.Interpreter {
	return s.interp
}

// Globals lists the names bound in the shared global frame, natives included.
func (s *Session) Globals() []string {
	return s.interp.GlobalEnvironment().Keys()
}

// Check resolves every script of program, storing each binding table on its
// source. The static errors of every failing script are joined in load order.
func (s *Session) Check(program *Program) error {
	var failures []error
	for _, src := range program.Sources {
		bindings, errs := resolver.Resolve(src.Program)
		if len(errs) > 0 {
			failures = append(failures, &SourceError{Path: src.Path, Kind: src.Kind, Err: resolver.ErrorList(errs)})
			continue
		}
		src.Bindings = bindings
	}
	return errors.Join(failures...)
}

// Run checks the whole program and only then executes its scripts in order.
// Execution stops at the first runtime error.
func (s *Session) Run(program *Program) error {
	if err := s.Check(program); err != nil {
		return err
	}
	for _, src := range program.Sources {
		if err := s.interp.Interpret(src.Program, src.Bindings); err != nil {
			return &SourceError{Path: src.Path, Kind: src.Kind, Err: err}
		}
	}
	return nil
}

// Eval parses, resolves and runs one chunk of source text, as the REPL does
// for each complete entry.
func (s *Session) Eval(source string) error {
	program, err := parser.ParseProgram(source)
	if err != nil {
		return err
	}
	bindings, errs := resolver.Resolve(program)
	if len(errs) > 0 {
		return resolver.ErrorList(errs)
	}
	return s.interp.Interpret(program, bindings)
}

// ExitCode maps an error returned by a session or loader to a process status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		syntax   parser.ErrorList
		static   resolver.ErrorList
		runtime  *interpreter.RuntimeError
		internal *interpreter.InternalError
	)
	switch {
	case errors.As(err, &syntax), errors.As(err, &static):
		return ExitDataErr
	case errors.As(err, &runtime), errors.As(err, &internal):
		return ExitSoftware
	default:
		return ExitFailure
	}
}

// IsFatal reports whether err must end an interactive session.
func IsFatal(err error) bool {
	var internal *interpreter.InternalError
	return errors.As(err, &internal)
}
