package ingest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/avsrecruit/talentsearch/internal/artifact"
)

// VectorExt is the file extension for per-candidate feature vectors in
// the parsed directory.
const VectorExt = ".vec"

var vecMagic = [4]byte{'T', 'S', 'C', 'V'}

const vecVersion uint32 = 1

// WriteVector persists one candidate vector atomically.
func WriteVector(path string, vec []float32) error {
	var buf bytes.Buffer
	buf.Write(vecMagic[:])
	binary.Write(&buf, binary.LittleEndian, vecVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(len(vec)))
	if err := binary.Write(&buf, binary.LittleEndian, vec); err != nil {
		return fmt.Errorf("encoding vector: %w", err)
	}
	return artifact.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadVector loads a candidate vector written by WriteVector.
func ReadVector(path string) ([]float32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vector %s: %w", path, err)
	}

	r := bytes.NewReader(raw)
	var magic [4]byte
	if _, err := r.Read(magic[:]); err != nil || magic != vecMagic {
		return nil, fmt.Errorf("reading vector %s: bad magic", path)
	}
	var version, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading vector header: %w", err)
	}
	if version != vecVersion {
		return nil, fmt.Errorf("vector version %d not supported", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("reading vector header: %w", err)
	}

	vec := make([]float32, dim)
	if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("reading vector values: %w", err)
	}
	return vec, nil
}
