package store

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Bodies are compressed with shared stateless coders; EncodeAll and
// DecodeAll are safe for concurrent use.
var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(fmt.Sprintf("creating zstd encoder: %v", err))
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("creating zstd decoder: %v", err))
	}
}

func compressBody(body []byte) []byte {
	return encoder.EncodeAll(body, make([]byte, 0, len(body)))
}

func decompressBody(data []byte) ([]byte, error) {
	body, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing body: %w", err)
	}
	return body, nil
}
