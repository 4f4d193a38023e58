package api

import (
	"encoding/json"
	"errors"
)

// PageData is the opaque document behind a page. It is passed through to
// the screen untouched.
type PageData struct {
	raw json.RawMessage
}

// NewPageData wraps a raw JSON document.
func NewPageData(raw []byte) PageData {
	return PageData{raw: append(json.RawMessage(nil), raw...)}
}

// Raw returns the document bytes.
func (p PageData) Raw() json.RawMessage {
	return p.raw
}

// Decode unmarshals the document into v.
func (p PageData) Decode(v any) error {
	if len(p.raw) == 0 {
		return errors.New("page data: empty")
	}
	return json.Unmarshal(p.raw, v)
}

// DisplayName returns currentUser.displayName when present.
func (p PageData) DisplayName() string {
	var doc struct {
		CurrentUser struct {
			DisplayName string `json:"displayName"`
		} `json:"currentUser"`
	}
	if err := p.Decode(&doc); err != nil {
		return ""
	}
	return doc.CurrentUser.DisplayName
}
