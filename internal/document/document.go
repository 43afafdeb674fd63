// Package document turns XML input into a generic attributed element tree.
//
// Parsing is delegated to etree; this package only adapts its result into
// the small read-only Element type the rest of topoview consumes, so the
// view-model never depends on the parser directly.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrInvalidDocument is returned for input that is not well-formed XML.
var ErrInvalidDocument = errors.New("invalid XML document")

// ErrEmptyInput is returned when the input holds no root element.
var ErrEmptyInput = fmt.Errorf("%w: no root element", ErrInvalidDocument)

// Attr is a single attribute as written on the source element.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the parsed tree. Attributes keep source order.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
}

// Lookup returns the attribute value and whether it was present.
func (e *Element) Lookup(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	v, _ := e.Lookup(name)
	return v
}

// AttrNames returns the attribute names in source order.
func (e *Element) AttrNames() []string {
	names := make([]string, len(e.Attrs))
	for i, a := range e.Attrs {
		names[i] = a.Name
	}
	return names
}

// ChildrenNamed returns the direct children whose tag is one of names.
func (e *Element) ChildrenNamed(names ...string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		for _, n := range names {
			if c.Name == n {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Document is a parsed input file.
type Document struct {
	Root   *Element
	Source string
}

// ElementsByTag returns every element named tag in document order,
// the root included.
func (d *Document) ElementsByTag(tag string) []*Element {
	if d == nil || d.Root == nil {
		return nil
	}
	var out []*Element
	var walk func(e *Element)
	walk = func(e *Element) {
		if e.Name == tag {
			out = append(out, e)
		}
		for _, c := range e.Children {
			walk(c)
		}
	}
	walk(d.Root)
	return out
}

// Count returns the number of elements in the document.
func (d *Document) Count() int {
	if d == nil || d.Root == nil {
		return 0
	}
	n := 0
	var walk func(e *Element)
	walk = func(e *Element) {
		n++
		for _, c := range e.Children {
			walk(c)
		}
	}
	walk(d.Root)
	return n
}

// Parse reads XML from r. source is only used for error messages and
// Document.Source.
func Parse(r io.Reader, source string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return ParseBytes(data, source)
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses an in-memory XML document.
func ParseBytes(data []byte, source string) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	doc.ReadSettings.PreserveDuplicateAttrs = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	roots := doc.ChildElements()
	switch len(roots) {
	case 0:
		return nil, ErrEmptyInput
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d root elements", ErrInvalidDocument, len(roots))
	}

	root, err := convert(roots[0])
	if err != nil {
		return nil, err
	}
	return &Document{Root: root, Source: source}, nil
}

// attrSpace maps the whitespace characters an XML processor replaces with
// a space in attribute values.
var attrSpace = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func convert(src *etree.Element) (*Element, error) {
	e := &Element{
		Name:  src.FullTag(),
		Attrs: make([]Attr, 0, len(src.Attr)),
	}
	seen := make(map[string]bool, len(src.Attr))
	for _, a := range src.Attr {
		key := a.FullKey()
		if seen[key] {
			return nil, fmt.Errorf("%w: attribute %s repeated on <%s>", ErrInvalidDocument, key, e.Name)
		}
		seen[key] = true
		e.Attrs = append(e.Attrs, Attr{Name: key, Value: attrSpace.Replace(a.Value)})
	}
	for _, c := range src.ChildElements() {
		child, err := convert(c)
		if err != nil {
			return nil, err
		}
		e.Children = append(e.Children, child)
	}
	return e, nil
}

// charsetReader decodes legacy encodings named in the XML declaration,
// e.g. ISO-8859-1 exports from older configuration tools.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
