// Package subject decomposes coded subject strings and filters subject
// rows by a checkbox selection.
//
// re3data subjects follow the DFG classification: "10102 Classical Philology"
// carries the code "10102" and expands to the ancestor path "1", "1-01",
// "1-01-02" (research area, review board, subject area).
package subject

import (
	"fmt"
	"strings"

	"github.com/matzehuels/re3facet/pkg/errors"
)

// MaxLevels is the depth of a decomposed hierarchy.
const MaxLevels = 3

// Subject is a decomposed subject string.
type Subject struct {
	Raw         string   `json:"raw"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	Hierarchy   []string `json:"hierarchy"` // Coarsest to finest
}

// Leaf returns the finest hierarchy level.
func (s Subject) Leaf() string {
	if len(s.Hierarchy) == 0 {
		return ""
	}
	return s.Hierarchy[len(s.Hierarchy)-1]
}

// MalformedSubjectError reports a subject string without a
// "code description" shape. It is recoverable: the subject is excluded from
// the hierarchy and the run continues.
type MalformedSubjectError struct {
	Subject    string
	Repository string // re3data identifier of the listing repository, if known
}

func (e *MalformedSubjectError) Error() string {
	if e.Repository != "" {
		return fmt.Sprintf("malformed subject %q in %s", e.Subject, e.Repository)
	}
	return fmt.Sprintf("malformed subject %q", e.Subject)
}

// Code implements errors.Coder.
func (e *MalformedSubjectError) Code() errors.Code { return errors.ErrCodeMalformedSubject }

// Decompose splits s at its first space into code and description and
// expands the code into its ancestor path.
//
// A subject without a space, or with an empty code, yields a
// *MalformedSubjectError.
func Decompose(s string) (Subject, error) {
	code, description, ok := strings.Cut(s, " ")
	if !ok || code == "" {
		return Subject{}, &MalformedSubjectError{Subject: s}
	}
	return Subject{
		Raw:         s,
		Code:        code,
		Description: description,
		Hierarchy:   Hierarchy(code),
	}, nil
}

// Hierarchy expands code positionally: the first character, then the next
// two, then the two after that, joined by dashes. Codes shorter than 3 or 5
// characters yield one or two levels.
//
//	Hierarchy("10102") // ["1", "1-01", "1-01-02"]
//	Hierarchy("101")   // ["1", "1-01"]
//
// The slicing counts every character, dashes included, so a dashed code
// such as "1-02-03" yields ["1", "1--0", "1--0-2-"]. Characters are runes,
// not bytes.
func Hierarchy(code string) []string {
	if code == "" {
		return nil
	}
	r := []rune(code)
	levels := make([]string, 0, MaxLevels)
	path := string(r[0:1])
	levels = append(levels, path)
	if len(r) >= 3 {
		path += "-" + string(r[1:3])
		levels = append(levels, path)
	}
	if len(r) >= 5 {
		path += "-" + string(r[3:5])
		levels = append(levels, path)
	}
	return levels
}
