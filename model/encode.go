package model

import (
	"io"

	"github.com/bytedance/sonic"
)

// json is the encoder used for all document serialization. ConfigStd is
// std-compatible: map keys are sorted, so identical documents always
// serialize to identical bytes.
var json = sonic.ConfigStd

// MarshalDocument serializes the document tree to JSON
func MarshalDocument(d *Document) ([]byte, error) {
	return json.Marshal(d)
}

// MarshalDocumentIndent serializes the document tree to indented JSON
func MarshalDocumentIndent(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument parses a serialized document tree
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// WriteDocument streams the document tree as JSON to w
func WriteDocument(w io.Writer, d *Document) error {
	return json.NewEncoder(w).Encode(d)
}

// ReadDocument parses a document tree from r
func ReadDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
