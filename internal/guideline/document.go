package guideline

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is the YAML form of one context's entry list, used for export
// and for saving a version from a file.
//
//	context: style
//	guidelines:
//	  - content: Use tabs
//	  - content: Wrap at 80
//	    active: false
type Document struct {
	Context    string  `yaml:"context,omitempty" json:"context,omitempty"`
	Guidelines []Entry `yaml:"guidelines" json:"guidelines"`
}

// UnmarshalYAML decodes an entry, defaulting active to true when omitted.
// Keys other than content and active are rejected.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		for i := 0; i < len(node.Content); i += 2 {
			key := node.Content[i]
			if key.Value != "content" && key.Value != "active" {
				return fmt.Errorf("line %d: field %s not found in guideline entry", key.Line, key.Value)
			}
		}
	}

	var raw struct {
		Content string `yaml:"content"`
		Active  *bool  `yaml:"active"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	e.Content = raw.Content
	e.Active = raw.Active == nil || *raw.Active
	return nil
}

// ReadDocument parses a YAML document. Unknown keys are rejected.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, fmt.Errorf("parse guideline document: %w", err)
	}
	return doc, nil
}

// WriteDocument writes doc as YAML.
func WriteDocument(w io.Writer, doc Document) error {
	if doc.Guidelines == nil {
		doc.Guidelines = []Entry{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write guideline document: %w", err)
	}
	return enc.Close()
}

// Blob encodes the document's entries as a version blob. Every entry must
// be storable on its own: blank content or content holding the delimiter is
// INVALID_CONTENT, and a repeated normalized content is DUPLICATE_GUIDELINE.
func (d Document) Blob() (string, error) {
	entries := make([]Entry, len(d.Guidelines))
	for i, e := range d.Guidelines {
		normalized, err := checkContent(e.Content)
		if err != nil {
			return "", err
		}
		entries[i] = Entry{Content: normalized, Active: e.Active}
	}

	if dup, ok := FindDuplicate(entries); ok {
		return "", NewDuplicateError(dup)
	}
	return Encode(entries), nil
}
