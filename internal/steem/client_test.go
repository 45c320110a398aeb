package steem

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataTags(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"steem", "bot"}, metadataTags(`{"tags":["steem","bot"]}`))
	require.Nil(t, metadataTags(`{"tags":"steem"}`))
	require.Nil(t, metadataTags(`{"app":"steemit/0.1"}`))
	require.Nil(t, metadataTags(`not json`))
	require.Nil(t, metadataTags(""))

	// Non-string entries are skipped, not fatal.
	require.Equal(t, []string{"steem"}, metadataTags(`{"tags":["steem",42]}`))
}

func TestBumpLast(t *testing.T) {
	t.Parallel()

	require.Equal(t, "annb", bumpLast("anna"))
	require.Equal(t, "", bumpLast(""))
}

func TestDecodeOperation(t *testing.T) {
	t.Parallel()

	raw := []json.RawMessage{
		json.RawMessage(`"vote"`),
		json.RawMessage(`{"voter":"anna","author":"bob","permlink":"p","weight":10000}`),
	}
	op, err := decodeOperation(raw)
	require.NoError(t, err)
	require.Equal(t, "vote", op.Type)
	require.Equal(t, "anna", op.Data["voter"])

	_, err = decodeOperation(raw[:1])
	require.Error(t, err)

	_, err = decodeOperation([]json.RawMessage{json.RawMessage(`42`), json.RawMessage(`{}`)})
	require.Error(t, err)
}
