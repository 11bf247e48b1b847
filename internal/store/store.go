package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"voxterrain/internal/voxel"

	"github.com/klauspost/compress/zstd"
)

var (
	// ErrNotFound is returned by Load when no density was saved for a chunk.
	ErrNotFound = errors.New("store: chunk not found")
	// ErrCorrupt means a stored blob does not decode to the recorded sample count.
	ErrCorrupt = errors.New("store: corrupt density blob")
)

// Record is one chunk's density field.
type Record struct {
	Coord      voxel.Vec3i
	Resolution voxel.Vec3i // chunk voxels; len(Samples) == (Resolution+1)^3
	Samples    []float32
}

// Store persists edited density fields so chunks survive restarts. Only the
// control goroutine calls into it.
type Store interface {
	// Load returns ErrNotFound when coord was never saved.
	Load(ctx context.Context, coord voxel.Vec3i) (Record, error)
	// SaveBatch writes every record atomically, replacing earlier versions.
	SaveBatch(ctx context.Context, recs []Record) error
	Close() error
}

// codec compresses little-endian float32 sample arrays with zstd.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) encode(samples []float32) []byte {
	raw := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/4))
}

func (c *codec) decode(blob []byte, count int) ([]float32, error) {
	raw, err := c.dec.DecodeAll(blob, make([]byte, 0, count*4))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(raw) != count*4 {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrCorrupt, len(raw), count*4)
	}
	out := make([]float32, count)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func (c *codec) close() {
	c.enc.Close()
	c.dec.Close()
}
