// Package sketch parses the sketch language, a small notation for visual
// trees, and builds [visual] nodes from it.
//
// A sketch is a sequence of lines. Each line holds one or more nodes:
//
//	"text"            a text leaf
//	_                 a non-breaking space of the configured width
//	/                 a forced break
//	name(a, b, ...)   an atom styled by [atoms.name]
//	name[a, b, ...]   an array styled by [arrays.name]
//	[a, b, ...]       an array styled by [arrays.list]
//
// Juxtaposed nodes form a group. Lines become the elements of a document
// array that starts each one on its own course. Text after # is a comment.
package sketch

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/mortar/pkg/config"
	"github.com/matzehuels/mortar/pkg/errors"
	"github.com/matzehuels/mortar/pkg/visual"
)

var (
	sketchLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n`},
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),_/]`},
	})

	sketchParser = participle.MustBuild[Document](
		participle.Lexer(sketchLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
)

// Document is the root of a parsed sketch.
type Document struct {
	Lines []*Seq `parser:"Newline* ( @@ Newline* )*"`
}

// Seq is a run of juxtaposed nodes.
type Seq struct {
	Pos   lexer.Position
	Nodes []*Node `parser:"@@+"`
}

// Node is one sketch node.
type Node struct {
	Pos   lexer.Position
	Text  *StringLiteral `parser:"  @String"`
	Space bool           `parser:"| @'_'"`
	Break bool           `parser:"| @'/'"`
	Atom  *Call          `parser:"| @@"`
	Array *List          `parser:"| @@"`
}

// Call is an atom: a name applied to its children.
type Call struct {
	Name string `parser:"@Ident '(' Newline*"`
	Args []*Seq `parser:"( @@ Newline* ( ',' Newline* @@ Newline* )* )? ')'"`
}

// List is an array, named or anonymous.
type List struct {
	Name  string `parser:"@Ident? '[' Newline*"`
	Items []*Seq `parser:"( @@ Newline* ( ',' Newline* @@ Newline* )* )? ']'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a sketch from r. name is used in error positions.
func Parse(name string, r io.Reader) (*Document, error) {
	doc, err := sketchParser.Parse(name, r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse sketch")
	}
	return doc, nil
}

// ParseString parses a sketch held in a string.
func ParseString(name, input string) (*Document, error) {
	doc, err := sketchParser.ParseString(name, input)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse sketch")
	}
	return doc, nil
}

// Load reads, parses and builds the sketch at path.
func Load(path string, cfg *config.Config) (*visual.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "sketch %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	doc, err := Parse(path, f)
	if err != nil {
		return nil, err
	}
	return Build(doc, cfg)
}
