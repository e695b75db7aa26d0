package persistence

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the algorithm applied to the snapshot body.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses zstd (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the name accepted by ParseCompression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Valid reports whether c names a known algorithm.
func (c Compression) Valid() bool {
	return c <= CompressionZSTD
}

// ParseCompression maps "none", "lz4" or "zstd" to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression %q", s)
	}
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compress returns the stored body and the codec actually used.
// Bodies that do not shrink are stored uncompressed.
func compress(raw []byte, c Compression) ([]byte, Compression, error) {
	if c == CompressionNone || len(raw) == 0 {
		return raw, CompressionNone, nil
	}

	var out []byte
	switch c {
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return nil, CompressionNone, err
		}
		out = dst[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		out = enc.EncodeAll(raw, nil)
		putZstdEncoder(enc)
	default:
		return nil, CompressionNone, fmt.Errorf("unknown compression %d", uint8(c))
	}

	// n == 0 means LZ4 found the input incompressible.
	if len(out) == 0 || len(out) >= len(raw) {
		return raw, CompressionNone, nil
	}
	return out, c, nil
}

// lz4MaxRatio bounds the expansion of an LZ4 block, used to reject corrupt raw_len values
// before allocating.
const lz4MaxRatio = 255

func decompress(body []byte, c Compression, rawLen uint64) ([]byte, error) {
	switch c {
	case CompressionNone:
		if uint64(len(body)) != rawLen {
			return nil, fmt.Errorf("%w: raw length %d does not match body length %d", ErrFormat, rawLen, len(body))
		}
		return body, nil
	case CompressionLZ4:
		if rawLen > uint64(len(body))*lz4MaxRatio+16 {
			return nil, fmt.Errorf("%w: implausible raw length %d", ErrFormat, rawLen)
		}
		dst := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(body, dst)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrFormat, err)
		}
		if uint64(n) != rawLen {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, expected %d", ErrFormat, n, rawLen)
		}
		return dst, nil
	case CompressionZSTD:
		return decompressZstd(body, rawLen)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrFormat, uint8(c))
	}
}

// decompressZstd decodes body without ever holding more than rawLen+1
// decoded bytes. A frame that declares a different content size is rejected
// before decoding.
func decompressZstd(body []byte, rawLen uint64) ([]byte, error) {
	var fh zstd.Header
	if err := fh.Decode(body); err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrFormat, err)
	}
	if fh.HasFCS && fh.FrameContentSize != rawLen {
		return nil, fmt.Errorf("%w: zstd frame holds %d bytes, expected %d", ErrFormat, fh.FrameContentSize, rawLen)
	}

	dec := getZstdDecoder()
	defer putZstdDecoder(dec)
	if err := dec.Reset(bytes.NewReader(body)); err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrFormat, err)
	}

	limit := int64(min(rawLen, math.MaxInt64-1)) + 1
	out, err := io.ReadAll(io.LimitReader(dec, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrFormat, err)
	}
	if uint64(len(out)) != rawLen {
		if uint64(len(out)) > rawLen {
			return nil, fmt.Errorf("%w: zstd produced more than %d bytes", ErrFormat, rawLen)
		}
		return nil, fmt.Errorf("%w: zstd produced %d bytes, expected %d", ErrFormat, len(out), rawLen)
	}
	return out, nil
}
