package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mruput.io/infrastructure/biometric/types"
)

func TestEmbeddingCodec(t *testing.T) {
	embedding := make(types.FaceEmbedding, types.EmbeddingLength)
	for i := range embedding {
		embedding[i] = float32(i) / 7
	}
	embedding[3] = -0.125

	raw := encodeEmbedding(embedding)
	assert.Len(t, raw, 4*types.EmbeddingLength)

	decoded, err := decodeEmbedding(raw)
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestDecodeEmbedding_TruncatedValue(t *testing.T) {
	_, err := decodeEmbedding([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "01HX-face-embedding", cacheKey("01HX"))
}
