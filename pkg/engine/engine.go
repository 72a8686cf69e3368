// Package engine provides the Lisp evaluation engine for Caliper scripts.
// It wraps zygomys in a sandboxed environment with geometry builtins and
// produces a Report of every geometry operation the script performed.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/caliper/pkg/geom"
	"github.com/chazu/caliper/pkg/kernel"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalResult bundles the full output of an evaluation for transport layers.
type EvalResult struct {
	Report *Report     `json:"report,omitempty"`
	Errors []EvalError `json:"errors,omitempty"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrecision sets the precision used by convex-hull and bounding-box
// calls that do not pass :precision.
func WithPrecision(p float64) Option {
	return func(e *Engine) {
		e.precision = p
	}
}

// Engine wraps the zygomys interpreter for Caliper evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	kernel    kernel.Kernel
	precision float64

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine evaluating geometry through k.
func NewEngine(k kernel.Kernel, opts ...Option) *Engine {
	e := &Engine{kernel: k, precision: geom.DefaultPrecision}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a Report.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns report + nil errors + nil error
//   - On parse/eval failure: returns nil report + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Report, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		rep, evalErrs, err := e.evaluate(source)
		ch <- evalResult{report: rep, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Report, []EvalError, error) {
	// Empty source is a valid program that produces an empty report.
	if strings.TrimSpace(source) == "" {
		return newReport(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	rep := newReport()
	env := newSandbox(e.kernel, e.precision, rep)
	defer env.Stop()

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	res, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if res != nil && res != zygo.SexpNull {
		rep.Result = res.SexpString(nil)
	}
	return rep, nil, nil
}

// sandboxMu serializes sandbox construction: zygomys keeps package-level
// state that is not safe for concurrent environment setup.
var sandboxMu sync.Mutex

func newSandbox(k kernel.Kernel, precision float64, rep *Report) *zygo.Zlisp {
	sandboxMu.Lock()
	defer sandboxMu.Unlock()
	env := zygo.NewZlispSandbox()
	registerBuiltins(env, k, precision, rep)
	return env
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
