package registry

import (
	"fmt"

	"github.com/matzehuels/re3facet/pkg/errors"
)

// Field selectors for the re3data schema.
var (
	FieldID               = Selector{Space: Namespace, Local: "re3data.orgIdentifier"}
	FieldName             = Selector{Space: Namespace, Local: "repositoryName"}
	FieldType             = Selector{Space: Namespace, Local: "type"}
	FieldIdentifier       = Selector{Space: Namespace, Local: "repositoryIdentifier"}
	FieldURL              = Selector{Space: Namespace, Local: "repositoryURL"}
	FieldSubject          = Selector{Space: Namespace, Local: "subject"}
	FieldKeyword          = Selector{Space: Namespace, Local: "keyword"}
	FieldMetadataStandard = Selector{Space: Namespace, Local: "metadataStandardName"}
)

// Record is one repository row.
type Record struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Types             []string `json:"types"`
	Identifiers       []string `json:"identifiers"`
	URL               string   `json:"url,omitempty"`
	Subjects          []string `json:"subjects"`
	Keywords          []string `json:"keywords"`
	MetadataStandards []string `json:"metadata_standards"`
}

// MalformedRecordError reports a document without a required field.
type MalformedRecordError struct {
	Index int    // Position in the Build input, -1 when extracted alone
	Field string // Missing field, empty when the document could not be parsed
	Err   error  // Parse error, if any
}

func (e *MalformedRecordError) Error() string {
	var what string
	if e.Field != "" {
		what = "missing required field " + e.Field
	} else {
		what = fmt.Sprintf("unreadable document: %v", e.Err)
	}
	if e.Index >= 0 {
		return fmt.Sprintf("malformed record at index %d: %s", e.Index, what)
	}
	return "malformed record: " + what
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// Code implements errors.Coder.
func (e *MalformedRecordError) Code() errors.Code { return errors.ErrCodeMalformedRecord }

// Extract parses raw and maps it onto a Record.
func Extract(raw RawDocument) (Record, error) {
	doc, err := Parse(raw)
	if err != nil {
		return Record{}, &MalformedRecordError{Index: -1, Err: err}
	}
	return ExtractDocument(doc)
}

// ExtractDocument maps an already parsed document onto a Record.
// It is deterministic and fails only when the identifier or the name is
// missing or blank.
func ExtractDocument(doc *Document) (Record, error) {
	id, ok := ExtractOptional(doc, FieldID)
	if !ok {
		return Record{}, &MalformedRecordError{Index: -1, Field: FieldID.Local}
	}
	name, ok := ExtractOptional(doc, FieldName)
	if !ok {
		return Record{}, &MalformedRecordError{Index: -1, Field: FieldName.Local}
	}
	url, _ := ExtractOptional(doc, FieldURL)

	return Record{
		ID:                id,
		Name:              name,
		Types:             ExtractList(doc, FieldType),
		Identifiers:       ExtractList(doc, FieldIdentifier),
		URL:               url,
		Subjects:          ExtractList(doc, FieldSubject),
		Keywords:          ExtractList(doc, FieldKeyword),
		MetadataStandards: ExtractList(doc, FieldMetadataStandard),
	}, nil
}

// ExtractList returns the text of every element matched by sel.
// It returns an empty slice, never nil, when nothing matches.
func ExtractList(doc *Document, sel Selector) []string {
	return doc.Texts(sel)
}

// ExtractOptional returns the first non-empty match of sel.
func ExtractOptional(doc *Document, sel Selector) (string, bool) {
	texts := doc.Texts(sel)
	if len(texts) == 0 {
		return "", false
	}
	return texts[0], true
}
