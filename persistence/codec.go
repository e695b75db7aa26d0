package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/lshdb/internal/hash"
)

// AppendBody appends the uncompressed body for snap to dst.
// Every record vector must have length snap.Dim.
func AppendBody(dst []byte, snap *Snapshot) ([]byte, error) {
	if snap.Dim <= 0 || snap.Dim > math.MaxInt32 {
		return nil, fmt.Errorf("persistence: invalid dimension %d", snap.Dim)
	}

	dst = binary.LittleEndian.AppendUint32(dst, uint32(int32(snap.Dim)))
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(snap.Records)))
	for _, rec := range snap.Records {
		if len(rec.Vector) != snap.Dim {
			return nil, fmt.Errorf("persistence: record %d has dimension %d, expected %d", rec.ID, len(rec.Vector), snap.Dim)
		}
		dst = binary.LittleEndian.AppendUint32(dst, uint32(rec.ID))
		for _, f := range rec.Vector {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
	}
	return dst, nil
}

// EncodeBody writes snap in the unversioned baseline layout.
func EncodeBody(w io.Writer, snap *Snapshot) (int64, error) {
	body, err := AppendBody(make([]byte, 0, BodySize(snap.Dim, len(snap.Records))), snap)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(body)
	return int64(n), err
}

// Encode writes snap as a versioned snapshot, compressing the body with c.
func Encode(w io.Writer, snap *Snapshot, c Compression) (int64, error) {
	raw, err := AppendBody(make([]byte, 0, BodySize(snap.Dim, len(snap.Records))), snap)
	if err != nil {
		return 0, err
	}

	body, used, err := compress(raw, c)
	if err != nil {
		return 0, err
	}

	hdr := Header{
		Version:     Version,
		Compression: used,
		BodyLen:     uint64(len(body)),
		RawLen:      uint64(len(raw)),
		Checksum:    hash.CRC32C(raw),
	}

	n, err := w.Write(hdr.append(make([]byte, 0, HeaderSize)))
	if err != nil {
		return int64(n), err
	}
	m, err := w.Write(body)
	return int64(n + m), err
}

func (h *Header) append(dst []byte) []byte {
	dst = append(dst, Magic...)
	dst = binary.LittleEndian.AppendUint16(dst, h.Version)
	dst = append(dst, byte(h.Compression), 0)
	dst = binary.LittleEndian.AppendUint64(dst, h.BodyLen)
	dst = binary.LittleEndian.AppendUint64(dst, h.RawLen)
	dst = binary.LittleEndian.AppendUint32(dst, h.Checksum)
	return dst
}

// IsVersioned reports whether data starts with the snapshot magic.
func IsVersioned(data []byte) bool {
	return len(data) >= len(Magic) && string(data[:len(Magic)]) == Magic
}

// DecodeHeader parses the versioned header at the start of data.
func DecodeHeader(data []byte) (*Header, error) {
	if !IsVersioned(data) {
		return nil, fmt.Errorf("%w: missing magic", ErrFormat)
	}
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}
	h := &Header{
		Version:     binary.LittleEndian.Uint16(data[4:]),
		Compression: Compression(data[6]),
		BodyLen:     binary.LittleEndian.Uint64(data[8:]),
		RawLen:      binary.LittleEndian.Uint64(data[16:]),
		Checksum:    binary.LittleEndian.Uint32(data[24:]),
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedVersion, h.Version)
	}
	return h, nil
}

// Decode parses a complete snapshot, versioned or legacy.
//
// All structural checks happen before Decode returns; the result never aliases data.
func Decode(data []byte) (*Snapshot, error) {
	if !IsVersioned(data) {
		snap, err := decodeBody(data)
		if err != nil {
			return nil, err
		}
		snap.Legacy = true
		return snap, nil
	}

	h, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	stored := uint64(len(data) - HeaderSize)
	switch {
	case stored < h.BodyLen:
		return nil, fmt.Errorf("%w: body needs %d bytes, have %d", ErrTruncated, h.BodyLen, stored)
	case stored > h.BodyLen:
		return nil, fmt.Errorf("%w: %d bytes after body", ErrTrailingData, stored-h.BodyLen)
	}

	raw, err := decompress(data[HeaderSize:], h.Compression, h.RawLen)
	if err != nil {
		return nil, err
	}
	if sum := hash.CRC32C(raw); sum != h.Checksum {
		return nil, fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrChecksumMismatch, sum, h.Checksum)
	}

	snap, err := decodeBody(raw)
	if err != nil {
		return nil, err
	}
	snap.Compression = h.Compression
	return snap, nil
}

// ReadFrom reads r to EOF and decodes the result.
func ReadFrom(r io.Reader) (*Snapshot, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return Decode(buf.Bytes())
}

func decodeBody(data []byte) (*Snapshot, error) {
	if len(data) < bodyHeaderSize {
		return nil, fmt.Errorf("%w: body header needs %d bytes, have %d", ErrTruncated, bodyHeaderSize, len(data))
	}

	dim := int32(binary.LittleEndian.Uint32(data))
	if dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dimension %d", ErrFormat, dim)
	}
	count := binary.LittleEndian.Uint64(data[4:])

	rest := uint64(len(data) - bodyHeaderSize)
	recSize := uint64(RecordSize(int(dim)))
	switch {
	case count > rest/recSize:
		return nil, fmt.Errorf("%w: %d records of %d bytes need more than the %d bytes present", ErrTruncated, count, recSize, rest)
	case count*recSize < rest:
		return nil, fmt.Errorf("%w: %d bytes after %d records", ErrTrailingData, rest-count*recSize, count)
	}

	d := int(dim)
	floats := make([]float32, int(count)*d)
	records := make([]Record, int(count))

	p := data[bodyHeaderSize:]
	for i := range records {
		vec := floats[i*d : (i+1)*d : (i+1)*d]
		records[i].ID = int32(binary.LittleEndian.Uint32(p))
		p = p[4:]
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(p))
			p = p[4:]
		}
		records[i].Vector = vec
	}

	return &Snapshot{Dim: d, Records: records}, nil
}
