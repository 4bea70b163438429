// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ID identifies a catalog entry.
type ID int

const (
	UsageID ID = iota + 1
	FileNotFoundID
	ParseFailedID
	InvalidNameID
	ConfigLoadFailedID
)

type (
	// MarkdownMsg is Markdown guidance shown under a diagnostic.
	MarkdownMsg string

	// Issue is one entry of the guidance catalog.
	Issue struct {
		id    ID
		mdMsg MarkdownMsg
	}
)

// ID returns the entry's identifier.
func (i *Issue) ID() ID { return i.id }

// MarkdownMsg returns the raw Markdown.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the guidance for a terminal using a glamour style
// ("notty", "dark", "light", "auto", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	usageIssue = &Issue{
		id: UsageID,
		mdMsg: `
# Wrong arguments

envflat takes the document to flatten and, optionally, a variable prefix.

~~~
$ envflat config.yaml
$ envflat config.yaml APP_
$ cat config.yaml | envflat - APP_
~~~

Run ` + "`envflat --help`" + ` for the list of flags.`,
	}

	fileNotFoundIssue = &Issue{
		id: FileNotFoundID,
		mdMsg: `
# Input file not found

The path given as the first argument does not exist or cannot be opened.

## Things you can try
- Check the path relative to the current directory
- Pass ` + "`-`" + ` to read the document from standard input`,
	}

	parseFailedIssue = &Issue{
		id: ParseFailedID,
		mdMsg: `
# The document could not be parsed

## Common causes
- Indentation or quoting mistakes in YAML
- More than one YAML document in the file (` + "`---`" + ` separators)
- A top-level list or scalar instead of a mapping
- The wrong format picked from the file extension

## Things you can try
- Force the format with ` + "`--format yaml|json|toml|cue|msgpack`" + `
- Validate the file with the format's own tooling`,
	}

	invalidNameIssue = &Issue{
		id: InvalidNameID,
		mdMsg: `
# Output rejected by strict mode

With ` + "`--strict`" + ` every variable must be a valid shell name
(letters, digits and underscores, not starting with a digit) and every
line must parse as a single assignment.

Strict mode checks the shape of the output, not its values. Values are
double-quoted, so ` + "`$VAR`" + ` and ` + "`$(...)`" + ` inside them still expand when the
output is evaluated by a shell.

## Things you can try
- Rename keys that contain dashes, dots or spaces
- Use ` + "`--separator _`" + ` instead of a punctuation separator
- Avoid values ending in a backslash
- Drop ` + "`--strict`" + ` if the output is not meant for a shell`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedID,
		mdMsg: `
# Configuration could not be loaded

The file passed with ` + "`--config`" + ` must be CUE matching this shape:

~~~cue
prefix:    "APP_"
separator: "_"
format:    "auto"
export:    false
strict:    false
verbose:   false
~~~`,
	}

	issues = map[ID]*Issue{
		usageIssue.ID():            usageIssue,
		fileNotFoundIssue.ID():     fileNotFoundIssue,
		parseFailedIssue.ID():      parseFailedIssue,
		invalidNameIssue.ID():      invalidNameIssue,
		configLoadFailedIssue.ID(): configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by ID.
func Values() []*Issue {
	all := maps.Values(issues)
	slices.SortFunc(all, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return all
}

// RenderCatalog renders every catalog entry, in ID order, as one document.
func RenderCatalog(stylePath string) (string, error) {
	var b strings.Builder
	for _, is := range Values() {
		out, err := is.Render(stylePath)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// Get returns the entry for id, or nil.
func Get(id ID) *Issue {
	return issues[id]
}
