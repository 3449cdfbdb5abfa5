package registry

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// RawDocument is one repository's metadata document, verbatim.
type RawDocument string

// Namespace is the re3data metadata schema namespace (revision 2.2).
const Namespace = "http://www.re3data.org/schema/2-2"

// Element is one parsed element with its trimmed direct character data.
type Element struct {
	Space string // Resolved namespace, empty when un-namespaced
	Local string // Local name as written in the document
	Attrs []xml.Attr
	Text  string
}

// Document is a parsed metadata document: its elements in document order.
type Document struct {
	elements []*Element
}

// Selector picks elements by local name, case-insensitively.
//
// An empty Space matches any namespace. Otherwise an element matches when
// its namespace equals Space or when it is un-namespaced.
type Selector struct {
	Space string
	Local string
}

// Matches reports whether e is selected by s.
func (s Selector) Matches(e *Element) bool {
	if !strings.EqualFold(e.Local, s.Local) {
		return false
	}
	return s.Space == "" || e.Space == "" || e.Space == s.Space
}

func (s Selector) String() string {
	if s.Space == "" {
		return s.Local
	}
	return "{" + s.Space + "}" + s.Local
}

// Parse reads doc leniently. A syntax error ends parsing without failing;
// the elements read up to that point are kept. A declared encoding such as
// ISO-8859-1 is decoded to UTF-8. Parse only fails when the input cannot be
// decoded at all, for example in a charset with no known decoder.
func Parse(doc RawDocument) (*Document, error) {
	dec := xml.NewDecoder(strings.NewReader(string(doc)))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	type open struct {
		el   *Element
		text strings.Builder
	}
	var (
		d     = &Document{}
		stack []*open
	)
	closeTop := func() {
		top := stack[len(stack)-1]
		top.el.Text = strings.TrimSpace(top.text.String())
		stack = stack[:len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		var syntaxErr *xml.SyntaxError
		if errors.As(err, &syntaxErr) {
			// Keep what was read, as an HTML parser would.
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Space: t.Name.Space, Local: t.Name.Local, Attrs: t.Attr}
			d.elements = append(d.elements, el)
			stack = append(stack, &open{el: el})
		case xml.EndElement:
			if len(stack) > 0 {
				closeTop()
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	for len(stack) > 0 {
		closeTop()
	}
	return d, nil
}

// Find returns every element matched by sel, in document order.
func (d *Document) Find(sel Selector) []*Element {
	var out []*Element
	for _, e := range d.elements {
		if sel.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Texts returns the non-empty text of every element matched by sel.
func (d *Document) Texts(sel Selector) []string {
	out := []string{}
	for _, e := range d.Find(sel) {
		if e.Text != "" {
			out = append(out, e.Text)
		}
	}
	return out
}

// AttrValues returns the value of every attribute named name (local part,
// case-insensitive) across all elements, in document order.
func (d *Document) AttrValues(name string) []string {
	var out []string
	for _, e := range d.elements {
		for _, a := range e.Attrs {
			if strings.EqualFold(a.Name.Local, name) {
				out = append(out, a.Value)
			}
		}
	}
	return out
}
