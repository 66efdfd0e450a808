package source

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/rotacl/types"
)

// rotationsFile is the on-disk rotation table:
//
//	rotations:
//	  rotation-id-01: rotation-fqdn-01.
//	  rotation-id-02: rotation-fqdn-02.
type rotationsFile struct {
	Rotations map[string]string `yaml:"rotations"`
}

// File implements a rotation source backed by a YAML rotation table.
//
// The file is read on every ListRotations call; the repository calls it once.
type File struct {
	path string
}

var _ types.RotationSource = (*File)(nil)

// NewFile creates a source reading the rotation table at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// ListRotations reads and parses the rotation table.
func (f *File) ListRotations(ctx context.Context) ([]types.Rotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rotations file %s: %w", f.path, err)
	}

	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rotations file %s: %w", f.path, err)
	}

	return src.ListRotations(ctx)
}

// Parse decodes a YAML rotation table into a static source.
//
// Unknown top-level fields are rejected to catch misspelled keys early.
func Parse(data []byte) (*Static, error) {
	var doc rotationsFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	for id, target := range doc.Rotations {
		if id == "" {
			return nil, fmt.Errorf("rotation with empty id")
		}
		if target == "" {
			return nil, fmt.Errorf("rotation %s has no DNS target", id)
		}
	}

	return FromMap(doc.Rotations), nil
}

// LoadFile reads the rotation table at path into a static source.
//
// Unlike File, the table is read once; later edits to the file are not seen.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rotations file %s: %w", path, err)
	}

	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rotations file %s: %w", path, err)
	}

	return src, nil
}
