package cache

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/mod/semver"

	"github.com/opal-lang/clc/core/params"
)

// FormatVersion is the version of the encoded entry layout. Entries whose
// major version differs are rejected.
const FormatVersion = "v1.0.0"

type wireEntry struct {
	Version  string             `cbor:"1,keyasint"`
	Code     string             `cbor:"2,keyasint"`
	Filename string             `cbor:"3,keyasint"`
	ProcName string             `cbor:"4,keyasint"`
	HasProc  bool               `cbor:"5,keyasint"`
	Warnings []string           `cbor:"6,keyasint,omitempty"`
	Params   []*params.Variable `cbor:"7,keyasint,omitempty"`
	Locals   []*params.Variable `cbor:"8,keyasint,omitempty"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder: %v", err))
	}
	return em
}()

// Encode serializes e deterministically
func Encode(e *Entry) ([]byte, error) {
	w := wireEntry{
		Version:  FormatVersion,
		Code:     e.Code,
		Filename: e.Filename,
		ProcName: e.ProcName,
		HasProc:  e.HasProc,
		Warnings: e.Warnings,
		Params:   e.Params,
		Locals:   e.Locals,
	}
	data, err := encMode.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Decode parses an encoded entry
func Decode(data []byte) (*Entry, error) {
	var w wireEntry
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("CBOR decoding failed: %w", err)
	}
	if !semver.IsValid(w.Version) || semver.Major(w.Version) != semver.Major(FormatVersion) {
		return nil, fmt.Errorf("unsupported format version: got %q, expected %s", w.Version, semver.Major(FormatVersion))
	}
	return &Entry{
		Code:     w.Code,
		Filename: w.Filename,
		ProcName: w.ProcName,
		HasProc:  w.HasProc,
		Warnings: w.Warnings,
		Params:   w.Params,
		Locals:   w.Locals,
	}, nil
}
