package vecindex

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/avsrecruit/talentsearch/internal/artifact"
)

// Artifact file names inside the index directory.
const (
	VectorsFile = "vectors.idx"
	MetaFile    = "meta.json"
)

// indexMagic identifies the vector artifact format.
var indexMagic = [4]byte{'T', 'S', 'V', 'I'}

const indexVersion uint32 = 1

// meta is the parallel row-to-candidate mapping, stored as JSON next to
// the binary vector file.
type meta struct {
	CandidateIDs []string `json:"candidate_ids"`
}

// Save writes the vector artifact and its row mapping atomically into
// the two paths. Both files are replaced via rename, so a reader holding
// the old pair keeps a consistent view.
func (ix *Index) Save(vectorsPath, metaPath string) error {
	var buf bytes.Buffer
	buf.Write(indexMagic[:])
	binary.Write(&buf, binary.LittleEndian, indexVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(ix.dim))
	binary.Write(&buf, binary.LittleEndian, uint32(len(ix.ids)))
	if err := binary.Write(&buf, binary.LittleEndian, ix.data); err != nil {
		return fmt.Errorf("encoding vectors: %w", err)
	}

	metaData, err := json.MarshalIndent(meta{CandidateIDs: ix.ids}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding index meta: %w", err)
	}

	if err := artifact.WriteFile(vectorsPath, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return artifact.WriteFile(metaPath, metaData, 0o644)
}

// Load reads a vector artifact pair from disk. The binary row count and
// the meta id list must agree; a mismatch means the two files come from
// different rebuilds and the pair is rejected.
func Load(vectorsPath, metaPath string) (*Index, error) {
	raw, err := os.ReadFile(vectorsPath)
	if err != nil {
		return nil, fmt.Errorf("reading vector index %s: %w", vectorsPath, err)
	}

	r := bytes.NewReader(raw)
	var magic [4]byte
	if _, err := r.Read(magic[:]); err != nil || magic != indexMagic {
		return nil, fmt.Errorf("reading vector index %s: bad magic", vectorsPath)
	}
	var version, dim, count uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading vector index header: %w", err)
	}
	if version != indexVersion {
		return nil, fmt.Errorf("vector index version %d not supported", version)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("reading vector index header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading vector index header: %w", err)
	}

	data := make([]float32, int(dim)*int(count))
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("reading vector rows: %w", err)
	}

	metaRaw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading index meta %s: %w", metaPath, err)
	}
	var m meta
	if err := json.Unmarshal(metaRaw, &m); err != nil {
		return nil, fmt.Errorf("decoding index meta %s: %w", metaPath, err)
	}
	if len(m.CandidateIDs) != int(count) {
		return nil, fmt.Errorf("index meta lists %d candidates but vector file has %d rows", len(m.CandidateIDs), count)
	}

	return &Index{
		dim:  int(dim),
		ids:  m.CandidateIDs,
		data: data,
	}, nil
}
