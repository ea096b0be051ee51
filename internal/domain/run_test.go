package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGroups_JSONKeepsOrder(t *testing.T) {
	groups := NewRunGroups()
	groups.Append("2024-01-10", RunRecord{ID: "a"})
	groups.Append(UnknownKey, RunRecord{ID: "b"})
	groups.Append("2024-01-09", RunRecord{ID: "c"})

	data, err := json.Marshal(groups)
	require.NoError(t, err)

	var decoded RunGroups
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"2024-01-10", UnknownKey, "2024-01-09"}, decoded.Keys())
}

func TestRunGroups_UnmarshalRepeatedKey(t *testing.T) {
	var groups RunGroups
	require.NoError(t, json.Unmarshal([]byte(`{"a":[{"id":"1"}],"b":[{"id":"2"}],"a":[{"id":"3"}]}`), &groups))

	assert.Equal(t, []string{"a", "b"}, groups.Keys())
	assert.Equal(t, 2, groups.Len())

	runs, ok := groups.Get("a")
	require.True(t, ok)
	require.Len(t, runs, 2)
	assert.Equal(t, "1", runs[0].ID)
	assert.Equal(t, "3", runs[1].ID)

	// Decoded groups stay usable for appends.
	groups.Append("c", RunRecord{ID: "4"})
	assert.Equal(t, []string{"a", "b", "c"}, groups.Keys())
}

func TestRunGroups_UnmarshalRejectsNonObject(t *testing.T) {
	for _, input := range []string{`[]`, `"a"`, `3`} {
		var groups RunGroups
		assert.Error(t, json.Unmarshal([]byte(input), &groups), input)
	}
}
