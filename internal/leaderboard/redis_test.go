package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMetadataMirrorRoundTrip(t *testing.T) {
	original := datatypes.JSONMap{"level": float64(7)}

	raw := encodeMetadata(original)
	require.NotEmpty(t, raw)

	// 从镜像还原的附加信息要和SQLite路径返回的完全一致
	assert.Equal(t, original, decodeMetadata(raw))
}

func TestMetadataMirrorOmitsEmpty(t *testing.T) {
	assert.Empty(t, encodeMetadata(nil))
	assert.Empty(t, encodeMetadata(datatypes.JSONMap{}))
	assert.Nil(t, decodeMetadata(""))
	assert.Nil(t, decodeMetadata("{not json"))
}
