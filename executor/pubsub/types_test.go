package pubsub

import (
	"errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/strixhq/strix/pkg/uuidx"
	"github.com/tidwall/gjson"
)

func TestChunkRoundTrip(t *testing.T) {
	original := Chunk{
		RunID:       uuidx.New(),
		Block:       3,
		Delta:       "wor",
		Accumulated: "hello wor",
		Timestamp:   strfmt.DateTime(time.Now().UTC().Truncate(time.Millisecond)),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, "chunk", gjson.GetBytes(data, "type").String())

	var decoded Chunk
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.RunID, decoded.RunID)
	assert.Equal(t, original.Block, decoded.Block)
	assert.Equal(t, original.Delta, decoded.Delta)
	assert.Equal(t, original.Accumulated, decoded.Accumulated)
}

func TestNodeCompletedRoundTrip(t *testing.T) {
	original := NodeCompleted{
		RunID:   uuidx.New(),
		Block:   1,
		Result:  "done",
		Errored: true,
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Equal(t, "node_completed", gjson.GetBytes(data, "type").String())

	var decoded NodeCompleted
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestNodeCompletedUnmarshalRejectsWrongType(t *testing.T) {
	var e NodeCompleted
	err := json.Unmarshal([]byte(`{"type":"chunk","run_id":"x"}`), &e)
	require.Error(t, err)

	err = json.Unmarshal([]byte(`{"type":"node_completed"}`), &e)
	require.Error(t, err, "run_id is required")
}

func TestErrorEventMarshal(t *testing.T) {
	e := Error{RunID: uuidx.New(), Block: 2, Err: errors.New("request failed")}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, "error", gjson.GetBytes(data, "type").String())
	assert.Equal(t, "request failed", gjson.GetBytes(data, "error").String())
	assert.EqualValues(t, 2, gjson.GetBytes(data, "block").Int())

	assert.Contains(t, e.Error(), "request failed")
}
