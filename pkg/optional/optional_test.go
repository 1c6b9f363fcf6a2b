package optional

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Name  nullable.Nullable[string] `json:"name,omitempty"`
	Notes nullable.Nullable[string] `json:"notes,omitempty"`
	Count nullable.Nullable[int]    `json:"count,omitempty"`
}

func TestFromNullableDistinguishesAbsentNullAndValue(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"notes":null,"count":3}`), &p))

	name := FromNullable(p.Name)
	assert.False(t, name.Set)

	notes := FromNullable(p.Notes)
	assert.True(t, notes.Set)
	assert.True(t, notes.Null)
	assert.Nil(t, notes.Ptr())

	count := FromNullable(p.Count)
	assert.True(t, count.HasValue())
	assert.Equal(t, 3, *count.Ptr())
}

func TestDecodeRejectsWrongType(t *testing.T) {
	var p patch
	assert.Error(t, json.Unmarshal([]byte(`{"count":"three"}`), &p))
}

func TestMap(t *testing.T) {
	itoa := func(n int) string { return strconv.Itoa(n) }

	assert.Equal(t, Field[string]{}, Map(nullable.Nullable[int]{}, itoa))
	assert.Equal(t, Null[string](), Map(nullable.NewNullNullable[int](), itoa))
	assert.Equal(t, Of("7"), Map(nullable.NewNullableWithValue(7), itoa))
}

func TestConstructors(t *testing.T) {
	assert.True(t, Of("ana").HasValue())
	assert.False(t, Null[string]().HasValue())
	assert.False(t, Field[string]{}.HasValue())
	assert.Equal(t, "ana", *Of("ana").Ptr())
}
