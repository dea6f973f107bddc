package jsonval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVariants(t *testing.T) {
	v, err := Decode([]byte(`[["Character","&"],null,true,3,{"k":"v"}]`))
	require.NoError(t, err)

	arr, ok := v.(Array)
	require.True(t, ok)
	require.Len(t, arr, 5)

	inner, ok := arr[0].(Array)
	require.True(t, ok)
	assert.Equal(t, String("Character"), inner[0])
	assert.Equal(t, String("&"), inner[1])

	assert.Equal(t, Null{}, arr[1])
	assert.Equal(t, Bool(true), arr[2])
	assert.Equal(t, Number("3"), arr[3])

	obj, ok := arr[4].(Object)
	require.True(t, ok)
	assert.Equal(t, String("v"), obj["k"])
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := Decode([]byte(`{} []`))
	require.Error(t, err)
}

func TestMarshalSortsObjectKeysAndKeepsNumbers(t *testing.T) {
	v, err := Decode([]byte(`{"b":2.50,"a":[null,false,"<x>"]}`))
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[null,false,"<x>"],"b":2.50}`, string(data))
}

func TestMapStringsTransformsKeysAndValues(t *testing.T) {
	v, err := Decode([]byte(`{"key":["a",{"nested":"b"}],"n":1}`))
	require.NoError(t, err)

	upper := MapStrings(v, func(s string) string { return s + "!" })
	obj := upper.(Object)

	arr, ok := obj["key!"].(Array)
	require.True(t, ok)
	assert.Equal(t, String("a!"), arr[0])
	assert.Equal(t, String("b!"), arr[1].(Object)["nested!"])
	assert.Equal(t, Number("1"), obj["n!"])
}

func TestEqual(t *testing.T) {
	mustDecode := func(s string) Value {
		t.Helper()
		v, err := Decode([]byte(s))
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical_arrays", `[["Character","&"]]`, `[["Character","&"]]`, true},
		{"different_strings", `["a"]`, `["b"]`, false},
		{"number_spelling", `[1]`, `[1.0]`, true},
		{"number_mismatch", `[1]`, `[2]`, false},
		{"null_vs_false", `[null]`, `[false]`, false},
		{"object_order_irrelevant", `{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{"object_extra_key", `{"a":1}`, `{"a":1,"b":2}`, false},
		{"length_mismatch", `[1,2]`, `[1]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(mustDecode(tt.a), mustDecode(tt.b)))
		})
	}
}
