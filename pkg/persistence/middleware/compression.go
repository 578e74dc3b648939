package middleware

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aretw0/flowbuilder/pkg/ports"
	"github.com/klauspost/compress/zstd"
)

// zstdMagic prefixes every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

type compressionMiddleware struct {
	next ports.KVStore
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// NewCompressionMiddleware creates a middleware that zstd-compresses values.
// Values written before compression was enabled are passed through on Load.
func NewCompressionMiddleware() Middleware {
	// Nil writer/reader: EncodeAll/DecodeAll only. Both are safe for concurrent use.
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(fmt.Sprintf("zstd encoder: %v", err))
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("zstd decoder: %v", err))
	}
	return func(next ports.KVStore) ports.KVStore {
		return &compressionMiddleware{next: next, enc: enc, dec: dec}
	}
}

func (m *compressionMiddleware) Save(ctx context.Context, key string, data []byte) error {
	return m.next.Save(ctx, key, m.enc.EncodeAll(data, nil))
}

func (m *compressionMiddleware) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := m.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}
	plain, err := m.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress value: %w", err)
	}
	return plain, nil
}

func (m *compressionMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *compressionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
