package enrollment

import (
	"encoding/binary"
	"fmt"
	"math"

	"mruput.io/infrastructure/biometric/types"
)

// encodeEmbedding packs an embedding as little-endian float32s for the cache.
func encodeEmbedding(e types.FaceEmbedding) []byte {
	out := make([]byte, 4*len(e))
	for i, v := range e {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

func decodeEmbedding(raw []byte) (types.FaceEmbedding, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("cached embedding has %d bytes", len(raw))
	}
	out := make(types.FaceEmbedding, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("%s-face-embedding", userID)
}
