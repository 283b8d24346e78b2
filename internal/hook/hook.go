// Package hook implements the protocol shared by host-invoked gate commands.
//
// A hook reads one JSON document from stdin and answers through its exit
// code: 0 lets the host proceed, 2 blocks it, and whatever the hook wrote to
// stderr is fed back to the host as the reason. Gates never fail open, so
// malformed input and internal failures both block.
package hook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JairoTorregrosa/picopala/internal/errors"
)

// Decision is the verdict of a gate.
type Decision struct {
	Allow  bool
	Reason string
}

// Allow lets the host proceed.
func Allow() Decision {
	return Decision{Allow: true}
}

// Block stops the host with a reason shown to whoever triggered the hook.
func Block(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// ExitCode maps the decision to the process exit code.
func (d Decision) ExitCode() int {
	if d.Allow {
		return errors.ExitOK
	}
	return errors.ExitBlocked
}

// Run decodes the JSON document on in into a T, evaluates it, and returns
// the process exit code. name prefixes the messages for malformed input and
// recovered panics. On a block the reason is written to errOut.
func Run[T any](in io.Reader, errOut io.Writer, name string, evaluate func(T) Decision) int {
	d := decide(in, name, evaluate)
	if !d.Allow && d.Reason != "" {
		fmt.Fprintln(errOut, d.Reason)
	}
	return d.ExitCode()
}

func decide[T any](in io.Reader, name string, evaluate func(T) Decision) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = Block("%s: unexpected error: %v", name, r)
		}
	}()

	data, err := io.ReadAll(in)
	if err != nil {
		return Block("%s: unexpected error: %v", name, err)
	}

	// null decodes into a zero T without error.
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return Block("%s: failed to parse input JSON.", name)
	}

	var input T
	if err := json.Unmarshal(data, &input); err != nil {
		return Block("%s: failed to parse input JSON.", name)
	}

	return evaluate(input)
}
