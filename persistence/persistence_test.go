package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/lshdb/util"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(n, dim int) *Snapshot {
	vecs := util.NewRNG(99).GenerateGaussianVectors(n, dim)
	snap := &Snapshot{Dim: dim}
	for i, v := range vecs {
		snap.Records = append(snap.Records, Record{ID: int32(i*3 - 5), Vector: v})
	}
	return snap
}

// zeroSnapshot compresses well, unlike gaussian noise.
func zeroSnapshot(n, dim int) *Snapshot {
	snap := &Snapshot{Dim: dim}
	for i := 0; i < n; i++ {
		snap.Records = append(snap.Records, Record{ID: int32(i), Vector: make([]float32, dim)})
	}
	return snap
}

// zstdZeros returns a zstd body holding n zero bytes. With frameSize the
// frame header records the content size; otherwise it is streamed without one.
func zstdZeros(t *testing.T, n int, frameSize bool) []byte {
	t.Helper()
	zeros := make([]byte, n)
	if frameSize {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		defer enc.Close()
		return enc.EncodeAll(zeros, nil)
	}
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(zeros)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// withHeader prefixes body with a versioned header declaring rawLen.
func withHeader(body []byte, c Compression, rawLen uint64) []byte {
	h := Header{Version: Version, Compression: c, BodyLen: uint64(len(body)), RawLen: rawLen}
	return append(h.append(nil), body...)
}

func TestEncodeBody_BaselineLayout(t *testing.T) {
	snap := &Snapshot{Dim: 2, Records: []Record{
		{ID: 7, Vector: []float32{1.5, -2}},
		{ID: -1, Vector: []float32{0, 3}},
	}}

	var buf bytes.Buffer
	n, err := EncodeBody(&buf, snap)
	require.NoError(t, err)
	assert.Equal(t, int64(BodySize(2, 2)), n)

	b := buf.Bytes()
	require.Len(t, b, 4+8+2*(4+8))
	assert.Equal(t, int32(2), int32(binary.LittleEndian.Uint32(b[0:])))
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(b[4:]))
	assert.Equal(t, int32(7), int32(binary.LittleEndian.Uint32(b[12:])))
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(b[16:])))
	assert.Equal(t, float32(-2), math.Float32frombits(binary.LittleEndian.Uint32(b[20:])))
	assert.Equal(t, int32(-1), int32(binary.LittleEndian.Uint32(b[24:])))
}

func TestEncodeDecode(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			for _, snap := range []*Snapshot{testSnapshot(50, 8), zeroSnapshot(200, 16), {Dim: 4}} {
				var buf bytes.Buffer
				n, err := Encode(&buf, snap, c)
				require.NoError(t, err)
				assert.Equal(t, int64(buf.Len()), n)

				got, err := Decode(buf.Bytes())
				require.NoError(t, err)
				assert.False(t, got.Legacy)
				assert.Equal(t, snap.Dim, got.Dim)
				assert.Len(t, got.Records, len(snap.Records))
				for i := range snap.Records {
					assert.Equal(t, snap.Records[i].ID, got.Records[i].ID)
					assert.Equal(t, snap.Records[i].Vector, got.Records[i].Vector)
				}
			}
		})
	}
}

func TestEncode_CompressionShrinksRepetitiveData(t *testing.T) {
	snap := zeroSnapshot(500, 32)

	var plain, lz, zs bytes.Buffer
	_, err := Encode(&plain, snap, CompressionNone)
	require.NoError(t, err)
	_, err = Encode(&lz, snap, CompressionLZ4)
	require.NoError(t, err)
	_, err = Encode(&zs, snap, CompressionZSTD)
	require.NoError(t, err)

	assert.Less(t, lz.Len(), plain.Len())
	assert.Less(t, zs.Len(), plain.Len())

	h, err := DecodeHeader(zs.Bytes())
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, h.Compression)
	assert.Equal(t, uint64(BodySize(32, 500)), h.RawLen)
}

func TestDecode_Legacy(t *testing.T) {
	snap := testSnapshot(10, 5)

	var buf bytes.Buffer
	_, err := EncodeBody(&buf, snap)
	require.NoError(t, err)

	got, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.True(t, got.Legacy)
	assert.Equal(t, snap.Records, got.Records)
}

func TestDecode_Malformed(t *testing.T) {
	snap := testSnapshot(4, 3)

	var versioned bytes.Buffer
	_, err := Encode(&versioned, snap, CompressionNone)
	require.NoError(t, err)
	var legacy bytes.Buffer
	_, err = EncodeBody(&legacy, snap)
	require.NoError(t, err)

	v := versioned.Bytes()
	l := legacy.Bytes()

	corrupt := func(b []byte, off int) []byte {
		c := bytes.Clone(b)
		c[off] ^= 0xFF
		return c
	}
	badVersion := bytes.Clone(v)
	binary.LittleEndian.PutUint16(badVersion[4:], 9)
	badCompression := bytes.Clone(v)
	badCompression[6] = 7
	zeroDim := bytes.Clone(l)
	binary.LittleEndian.PutUint32(zeroDim, 0)
	hugeCount := bytes.Clone(l)
	binary.LittleEndian.PutUint64(hugeCount[4:], math.MaxUint64)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"Empty", nil, ErrTruncated},
		{"ShortLegacyHeader", l[:7], ErrTruncated},
		{"LegacyTruncatedRecord", l[:len(l)-1], ErrTruncated},
		{"LegacyTrailing", append(bytes.Clone(l), 0), ErrTrailingData},
		{"LegacyZeroDim", zeroDim, ErrFormat},
		{"LegacyHugeCount", hugeCount, ErrTruncated},
		{"ShortHeader", v[:HeaderSize-1], ErrTruncated},
		{"BadVersion", badVersion, ErrUnsupportedVersion},
		{"BadCompression", badCompression, ErrFormat},
		{"TruncatedBody", v[:len(v)-4], ErrTruncated},
		{"TrailingBody", append(bytes.Clone(v), 1, 2), ErrTrailingData},
		{"FlippedPayload", corrupt(v, len(v)-1), ErrChecksumMismatch},
		{"ZstdFrameSizeMismatch", withHeader(zstdZeros(t, 1<<20, true), CompressionZSTD, 16), ErrFormat},
		{"ZstdStreamLongerThanRawLen", withHeader(zstdZeros(t, 1<<20, false), CompressionZSTD, 16), ErrFormat},
		{"ZstdGarbage", withHeader([]byte("not zstd at all"), CompressionZSTD, 16), ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecompressZstd_StopsAtRawLen(t *testing.T) {
	body := zstdZeros(t, 4<<20, false)

	out, err := decompress(body, CompressionZSTD, 4<<20)
	require.NoError(t, err)
	assert.Len(t, out, 4<<20)

	out, err = decompress(body, CompressionZSTD, 16)
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "more than 16 bytes")
	assert.Nil(t, out)

	_, err = decompress(zstdZeros(t, 4<<20, true), CompressionZSTD, 16)
	assert.ErrorContains(t, err, "frame holds")
}

func TestDecode_DoesNotAliasInput(t *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, &Snapshot{Dim: 1, Records: []Record{{ID: 1, Vector: []float32{2}}}}, CompressionNone)
	require.NoError(t, err)

	data := buf.Bytes()
	snap, err := Decode(data)
	require.NoError(t, err)

	for i := range data {
		data[i] = 0
	}
	assert.Equal(t, []float32{2}, snap.Records[0].Vector)
}

func TestAppendBody_RejectsWrongDimension(t *testing.T) {
	_, err := AppendBody(nil, &Snapshot{Dim: 2, Records: []Record{{ID: 1, Vector: []float32{1}}}})
	assert.Error(t, err)

	_, err = AppendBody(nil, &Snapshot{Dim: 0})
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	for in, want := range map[string]Compression{"": CompressionNone, "none": CompressionNone, "LZ4": CompressionLZ4, " zstd ": CompressionZSTD} {
		got, err := ParseCompression(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCompression("gzip")
	assert.Error(t, err)
	assert.Equal(t, "unknown(9)", Compression(9).String())
	assert.True(t, CompressionZSTD.Valid())
	assert.False(t, Compression(9).Valid())
}

func TestSaveToFileAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.lshd")
	snap := testSnapshot(20, 6)

	err := SaveToFile(path, func(w io.Writer) error {
		_, err := Encode(w, snap, CompressionLZ4)
		return err
	})
	require.NoError(t, err)

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, snap.Records, got.Records)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestSaveToFile_FailureKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.lshd")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	boom := errors.New("boom")
	err := SaveToFile(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotErrorIs(t, err, ErrFormat)
}
