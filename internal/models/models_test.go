package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIDDecodesNumberAndString(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id": 5}`), &task))
	assert.Equal(t, FlexID("5"), task.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "5"}`), &task))
	assert.Equal(t, FlexID("5"), task.ID)
}

func TestFlexIDEqualsAcrossRepresentations(t *testing.T) {
	id := FlexID("5")
	assert.True(t, id.Equals(5))
	assert.True(t, id.Equals("5"))
	assert.True(t, id.Equals(int64(5)))
	assert.True(t, id.Equals(FlexID("5")))
	assert.False(t, id.Equals(6))
	assert.False(t, id.Equals(nil))
}

func TestTaskStatusCycle(t *testing.T) {
	assert.Equal(t, TaskStatusSent, TaskStatusPending.Next())
	assert.Equal(t, TaskStatusDone, TaskStatusSent.Next())
	assert.Equal(t, TaskStatusPending, TaskStatusDone.Next())
}

func TestTaskStatusDecodesNumericString(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"status": "2"}`), &task))
	assert.Equal(t, TaskStatusDone, task.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"status": 1}`), &task))
	assert.Equal(t, TaskStatusSent, task.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status": 7}`), &task))
}

func TestOptionNormalizesLabelKeys(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`{"id":1,"option":"Acme"}`, "Acme"},
		{`{"id":1,"options":"Acme"}`, "Acme"},
		{`{"id":1,"name":"Acme"}`, "Acme"},
		{`{"id":1,"option":"Primary","name":"Ignored"}`, "Primary"},
	}
	for _, tc := range cases {
		var o Option
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &o))
		assert.Equal(t, tc.want, o.Label, tc.raw)
	}
}

func TestOptionRoundTripsThroughCanonicalForm(t *testing.T) {
	in := Option{ID: "3", Label: "Acme", RelationshipID: "44"}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Option
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
