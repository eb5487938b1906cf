// pkg/compress/compress.go

package compress

import (
	"strings"

	"github.com/DataDog/zstd"
	lz4 "github.com/hungys/go-lz4"
	"github.com/pkg/errors"
)

// Compressor converts page-sized buffers between raw and compressed form.
type Compressor interface {
	Name() string
	CompressBound(size int) int
	Compress(dst, src []byte) (int, error)
	Decompress(dst, src []byte) (int, error)
}

// NewCompressor returns a compressor for the named algorithm, or nil if the
// name is not recognized.
func NewCompressor(algr string) Compressor {
	switch strings.ToLower(algr) {
	case "lz4", "":
		return LZ4{}
	case "zstd":
		return &ZStandard{level: 3}
	case "none":
		return NoOp{}
	}
	return nil
}

type NoOp struct{}

func (n NoOp) Name() string { return "None" }

func (n NoOp) CompressBound(size int) int { return size }

func (n NoOp) Compress(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, errors.Errorf("buffer too short: %d < %d", len(dst), len(src))
	}
	return copy(dst, src), nil
}

func (n NoOp) Decompress(dst, src []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, errors.Errorf("buffer too short: %d < %d", len(dst), len(src))
	}
	return copy(dst, src), nil
}

type LZ4 struct{}

func (l LZ4) Name() string { return "LZ4" }

func (l LZ4) CompressBound(size int) int { return lz4.CompressBound(size) }

func (l LZ4) Compress(dst, src []byte) (int, error) {
	return lz4.CompressDefault(src, dst)
}

func (l LZ4) Decompress(dst, src []byte) (int, error) {
	return lz4.DecompressSafe(src, dst)
}

type ZStandard struct {
	level int
}

func (z *ZStandard) Name() string { return "Zstd" }

func (z *ZStandard) CompressBound(size int) int { return zstd.CompressBound(size) }

func (z *ZStandard) Compress(dst, src []byte) (int, error) {
	d, err := zstd.CompressLevel(dst[:0], src, z.level)
	if err != nil {
		return 0, err
	}
	if len(d) > cap(dst) {
		return 0, errors.Errorf("compressed into %d bytes, but buffer is %d", len(d), cap(dst))
	}
	return len(d), nil
}

func (z *ZStandard) Decompress(dst, src []byte) (int, error) {
	d, err := zstd.Decompress(dst[:0], src)
	if err != nil {
		return 0, err
	}
	if len(d) > cap(dst) {
		return 0, errors.Errorf("decompressed into %d bytes, but buffer is %d", len(d), cap(dst))
	}
	return len(d), nil
}
