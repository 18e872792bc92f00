// Package codec reads and writes project bundles (.bm2 files).
//
// A bundle is a CBOR envelope {schema, version, project}, optionally
// wrapped in a zstd frame. Decode detects the frame by its magic number,
// so compressed and plain bundles are accepted alike.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/sciome/bmdexpress-web/internal/apperr"
	"github.com/sciome/bmdexpress-web/internal/projects/domain"
)

const (
	Schema  = "bmdexpress.project"
	Version = 1

	// DefaultMaxDecodedSize bounds the decompressed size of a bundle when
	// no smaller limit is configured.
	DefaultMaxDecodedSize = 4 << 30
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type envelope struct {
	Schema  string          `cbor:"schema"`
	Version int             `cbor:"version"`
	Project *domain.Project `cbor:"project"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	zstdEncoder *zstd.Encoder
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxArrayElements: 1 << 27,
		MaxMapPairs:      1 << 27,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("codec: zstd encoder initialization failed: " + err.Error())
	}
}

// Codec implements the project decoder used by the upload path.
// MaxDecodedBytes bounds the decompressed bundle; zero means
// DefaultMaxDecodedSize.
type Codec struct {
	MaxDecodedBytes int64
}

func (c Codec) Decode(data []byte) (*domain.Project, error) {
	limit := c.MaxDecodedBytes
	if limit <= 0 {
		limit = DefaultMaxDecodedSize
	}
	return decode(data, limit)
}

// Decode parses a bundle. Any malformed, truncated or foreign input is
// reported as a DecodeError.
func Decode(data []byte) (*domain.Project, error) {
	return decode(data, DefaultMaxDecodedSize)
}

func decode(data []byte, limit int64) (*domain.Project, error) {
	if len(data) == 0 {
		return nil, apperr.Decode("empty bundle")
	}
	if IsCompressed(data) {
		raw, err := decompress(data, limit)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, apperr.Decode("parse bundle: %v", err)
	}
	if env.Schema != Schema {
		return nil, apperr.Decode("unknown bundle schema %q", env.Schema)
	}
	if env.Version != Version {
		return nil, apperr.Decode("unsupported bundle version %d", env.Version)
	}
	if env.Project == nil {
		return nil, apperr.Decode("bundle has no project")
	}
	return env.Project, nil
}

// decompress inflates a zstd bundle, stopping once the output passes
// limit. Oversized bundles are a ValidationError.
func decompress(data []byte, limit int64) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(limit)),
	)
	if err != nil {
		return nil, apperr.Decode("decompress bundle: %v", err)
	}
	defer dec.Close()

	raw, err := io.ReadAll(io.LimitReader(dec, limit+1))
	switch {
	case errors.Is(err, zstd.ErrDecoderSizeExceeded), errors.Is(err, zstd.ErrWindowSizeExceeded):
		return nil, apperr.Validation("decompressed bundle exceeds %d bytes", limit)
	case err != nil:
		return nil, apperr.Decode("decompress bundle: %v", err)
	case int64(len(raw)) > limit:
		return nil, apperr.Validation("decompressed bundle exceeds %d bytes", limit)
	}
	return raw, nil
}

// Encode serializes p as a bundle, zstd-compressed when compress is set.
func Encode(p *domain.Project, compress bool) ([]byte, error) {
	if p == nil {
		return nil, errors.New("codec: nil project")
	}
	data, err := encMode.Marshal(envelope{Schema: Schema, Version: Version, Project: p})
	if err != nil {
		return nil, fmt.Errorf("codec: encode project: %w", err)
	}
	if !compress {
		return data, nil
	}
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// IsCompressed reports whether data starts with a zstd frame.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}
