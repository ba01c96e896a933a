package shelf

import (
	"encoding/json"
	"fmt"
	"io"
)

// Validate performs the import shape check: both collections must be present
// as lists. A JSON null or a missing field decodes to a nil slice and fails.
func (d Data) Validate() error {
	if d.Bookmarks == nil || d.Categories == nil {
		return ErrInvalidImport
	}
	return nil
}

// DecodeData reads a JSON export document and validates its shape.
func DecodeData(r io.Reader) (Data, error) {
	var d Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Data{}, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	if err := d.Validate(); err != nil {
		return Data{}, err
	}
	return d, nil
}

// EncodeData writes d as an indented JSON export document.
func EncodeData(w io.Writer, d Data) error {
	if d.Bookmarks == nil {
		d.Bookmarks = []Bookmark{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding export data: %w", err)
	}
	return nil
}
