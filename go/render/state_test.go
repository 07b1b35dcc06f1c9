package render

import (
	"encoding/json"
	"testing"

	rp "github.com/rmmh/isoview/go/resourcepack"
	"github.com/stretchr/testify/require"
)

func TestStateList(t *testing.T) {
	var st rp.BlockState
	require.NoError(t, json.Unmarshal([]byte(`{"variants": {
		"facing=east,half=lower,open=false": {"model": "a"},
		"facing=north,half=upper,open=true": {"model": "b"},
		"facing=south,half=lower,open=true": {"model": "c"}
	}}`), &st))
	require.Equal(t, [][]string{
		{"half", "lower", "upper"},
		{"open", "false", "true"},
		{"facing", "east", "north", "south"},
	}, StateList(&st))
	require.Equal(t, map[string]string{"half": "lower", "open": "false", "facing": "east"}, DefaultState(&st))

	require.Nil(t, StateList(&rp.BlockState{}))
}
