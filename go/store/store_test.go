package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	for _, buf := range [][]byte{
		{},
		[]byte("x"),
		bytes.Repeat([]byte(`{"type":"top","x":0,"y":-16}`), 200),
	} {
		comp := compress(buf)
		got, err := decompress(comp)
		require.NoError(t, err)
		require.Equal(t, string(buf), string(got))
	}

	big := bytes.Repeat([]byte("abcd"), 1000)
	require.Equal(t, encLZ4, compress(big)[0])
	require.Less(t, len(compress(big)), len(big))
	require.Equal(t, encRaw, compress([]byte("x"))[0])

	_, err := decompress(nil)
	require.Error(t, err)
	_, err = decompress([]byte{9, 1, 2})
	require.Error(t, err)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()

	key := Key([]string{"vanilla"}, "minecraft:oak_door", "facing=east,half=lower", 2)
	require.Equal(t, "vanilla|minecraft:oak_door|facing=east,half=lower|2", key)

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	body := bytes.Repeat([]byte(`{"faces":[]}`), 50)
	require.NoError(t, s.Put(ctx, key, body))
	got, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, body, got)

	require.NoError(t, s.Put(ctx, key, []byte("{}")))
	got, _, err = s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, []byte("{}"), got)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
