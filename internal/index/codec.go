package index

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

const (
	magic         = "RAIX"
	formatVersion = 1
)

var errCorrupt = errors.New("corrupt index artifact")

type header struct {
	Meta  Meta `json:"meta"`
	Count int  `json:"count"`
}

// Encode serializes ix as: magic, version byte, uint32 header length, JSON
// header, little-endian float32 rows, CRC-32 of everything before it.
func Encode(ix *Index) ([]byte, error) {
	hdr, err := json.Marshal(header{Meta: ix.meta, Count: ix.Len()})
	if err != nil {
		return nil, fmt.Errorf("marshal index header: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(magic) + 1 + 4 + len(hdr) + 4*len(ix.data) + 4)
	buf.WriteString(magic)
	buf.WriteByte(formatVersion)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(hdr)))
	buf.Write(hdr)

	row := make([]byte, 4)
	for _, x := range ix.data {
		binary.LittleEndian.PutUint32(row, math.Float32bits(x))
		buf.Write(row)
	}

	_ = binary.Write(&buf, binary.LittleEndian, crc32.ChecksumIEEE(buf.Bytes()))
	return buf.Bytes(), nil
}

// Decode parses an artifact written by Encode. Any structural problem is
// reported as errCorrupt.
func Decode(data []byte) (*Index, error) {
	prefix := len(magic) + 1 + 4
	if len(data) < prefix+4 {
		return nil, fmt.Errorf("%w: %d bytes is too short", errCorrupt, len(data))
	}
	if string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("%w: bad magic", errCorrupt)
	}
	if v := data[len(magic)]; v != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errCorrupt, v)
	}

	body, sum := data[:len(data)-4], binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", errCorrupt)
	}

	hdrLen := int(binary.LittleEndian.Uint32(data[len(magic)+1 : prefix]))
	if hdrLen > len(body)-prefix {
		return nil, fmt.Errorf("%w: header length %d out of range", errCorrupt, hdrLen)
	}

	var hdr header
	if err := json.Unmarshal(body[prefix:prefix+hdrLen], &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}

	rows := body[prefix+hdrLen:]
	dim := hdr.Meta.Dimension
	if hdr.Count < 0 || dim < 0 || (dim > 0 && hdr.Count > len(rows)/4/dim) || len(rows) != 4*hdr.Count*dim {
		return nil, fmt.Errorf("%w: %d bytes of vectors for %d rows of dimension %d", errCorrupt, len(rows), hdr.Count, dim)
	}

	values := make([]float32, hdr.Count*dim)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(rows[4*i:]))
	}

	return &Index{meta: hdr.Meta, dim: dim, data: values}, nil
}
