// Package registry turns raw re3data metadata documents into a table of
// repository records.
//
// # Documents
//
// A [RawDocument] is one repository's XML exactly as the registry returned
// it. [Parse] reads it leniently: HTML entities are accepted, unclosed
// elements are closed automatically and element names are compared
// case-insensitively on their local part.
//
// # Extraction
//
// [Extract] maps a document onto a [Record]. The re3data identifier and the
// repository name are required; a document missing either yields a
// [*MalformedRecordError]. Every other field is optional:
//
//	doc, _ := registry.Parse(raw)
//	keywords := registry.ExtractList(doc, registry.FieldKeyword)  // never fails
//	url, ok := registry.ExtractOptional(doc, registry.FieldURL)
//
// # Tables
//
// [Build] extracts every document in order and fails fast on the first
// malformed one, reporting its index. [BuildLenient] skips malformed
// documents instead and returns their errors alongside the table.
package registry
