// SPDX-License-Identifier: MPL-2.0

// Package render writes flattened entries as shell assignment statements.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/envflat/envflat/internal/flatten"
	"github.com/envflat/envflat/internal/issue"
)

// DefaultPrefix is written in front of every variable name unless overridden.
const DefaultPrefix = "CONFIG_"

// Options controls the rendered form.
type Options struct {
	// Prefix is prepended to every key to form the variable name.
	Prefix string
	// Export writes "export NAME=..." instead of "NAME=...".
	Export bool
	// Strict rejects output that is not a valid list of shell assignments.
	Strict bool
}

var escaper = strings.NewReplacer(`"`, `\"`, "`", "\\`")

// Escape escapes double quotes and backticks for use inside a double-quoted
// shell string. Nothing else is touched.
func Escape(value string) string {
	return escaper.Replace(value)
}

// Line renders a single entry without a trailing newline.
func Line(e flatten.Entry, opts Options) string {
	var b strings.Builder
	if opts.Export {
		b.WriteString("export ")
	}
	b.WriteString(opts.Prefix)
	b.WriteString(e.Key)
	b.WriteString(`="`)
	b.WriteString(Escape(e.Value))
	b.WriteByte('"')
	return b.String()
}

// Render writes one line per entry to w. The whole output is built and, in
// strict mode, validated before the first byte is written, so a failure
// leaves w untouched.
func Render(w io.Writer, entries []flatten.Entry, opts Options) error {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(Line(e, opts))
		buf.WriteByte('\n')
	}

	if opts.Strict {
		if err := validate(buf.Bytes(), entries, opts); err != nil {
			return err
		}
	}

	if buf.Len() == 0 {
		return nil
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// validate checks every variable name and then parses the rendered text as a
// shell program made only of assignments. Plain assignments are checked
// against POSIX; the export form needs Bash to see declarations.
func validate(script []byte, entries []flatten.Entry, opts Options) error {
	for _, e := range entries {
		name := opts.Prefix + e.Key
		if !syntax.ValidName(name) {
			return &issue.NameError{Name: name, Reason: "not a valid shell variable name"}
		}
	}

	lang := syntax.LangPOSIX
	if opts.Export {
		lang = syntax.LangBash
	}
	file, err := syntax.NewParser(syntax.Variant(lang)).Parse(bytes.NewReader(script), "")
	if err != nil {
		return &issue.NameError{Reason: "output is not valid shell", Cause: err}
	}

	if len(file.Stmts) != len(entries) {
		return &issue.NameError{
			Reason: fmt.Sprintf("output parses as %d statements, want %d", len(file.Stmts), len(entries)),
		}
	}
	for i, stmt := range file.Stmts {
		if !isAssignment(stmt, opts.Export) {
			return &issue.NameError{
				Name:   opts.Prefix + entries[i].Key,
				Reason: "line does not parse as a single assignment",
			}
		}
	}
	return nil
}

func isAssignment(stmt *syntax.Stmt, export bool) bool {
	if stmt.Negated || stmt.Background || len(stmt.Redirs) > 0 {
		return false
	}
	if export {
		decl, ok := stmt.Cmd.(*syntax.DeclClause)
		return ok && decl.Variant.Value == "export" && len(decl.Args) == 1 &&
			decl.Args[0].Name != nil && !decl.Args[0].Naked
	}
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	return ok && len(call.Args) == 0 && len(call.Assigns) == 1 && call.Assigns[0].Name != nil
}
