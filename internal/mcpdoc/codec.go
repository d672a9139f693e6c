package mcpdoc

import (
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Extract when the named provider has no
// definition in the document.
var ErrNotFound = errors.New("provider not found")

// Codec reads an existing configuration document. Two implementations
// exist: JQCodec drives the external jq tool, ScanCodec is the
// text-scan fallback used when jq is unavailable. For well-formed input
// both yield the same name set; merge logic sees only this interface.
type Codec interface {
	// Names lists the provider names defined in the document at path.
	Names(path string) ([]string, error)

	// Extract returns the self-contained JSON value of one provider
	// definition, or ErrNotFound.
	Extract(path, name string) (json.RawMessage, error)

	// Check verifies that data is a well-formed configuration document.
	Check(data []byte) error
}
