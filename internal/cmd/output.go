package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/JairoTorregrosa/picopala/internal/errors"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// checkFormat rejects a --format value outside allowed.
func checkFormat(cmd *cobra.Command, format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return errors.NewUsageError(
		fmt.Sprintf("invalid format '%s' for %s. Use: %s", format, cmd.Name(), strings.Join(allowed, ", ")),
		errors.ErrUsage,
	).WithUsage(cmd.UseLine())
}

// writeStructured writes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "failed to encode YAML")
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode JSON")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

// exactArgs is cobra.ExactArgs with a usage line attached to the error.
func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == n {
			return nil
		}
		msg := fmt.Sprintf("missing %s", what)
		if len(args) > n {
			msg = fmt.Sprintf("too many arguments: expected %s", what)
		}
		return errors.NewUsageError(msg, errors.ErrUsage).WithUsage(cmd.UseLine())
	}
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
