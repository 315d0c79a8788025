package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("hello"), `"hello"`},
		{"int", Int(42), `42`},
		{"negative int", Int(-7), `-7`},
		{"true", Bool(true), `true`},
		{"false", Bool(false), `false`},
		{"null", Null{}, `null`},
		{"empty list", List{}, `[]`},
		{"empty record", Record{}, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshal_SortsKeys(t *testing.T) {
	rec := Record{
		"name": String("n"),
		"id":   String("x"),
		"kind": String("generic"),
		"a":    List{Int(1), Int(2)},
	}
	got, err := Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2],"id":"x","kind":"generic","name":"n"}`, string(got))
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	got, err := Marshal(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(got))
}

func TestMarshal_EscapesControlCharacters(t *testing.T) {
	got, err := Marshal(String("a\"b\\c\nd\x01"))
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\nd\u0001"`, string(got))
}

func TestMarshal_LineSeparatorsNotEscaped(t *testing.T) {
	got, err := Marshal(String("x\u2028y"))
	require.NoError(t, err)
	assert.Equal(t, "\"x\u2028y\"", string(got))
}

func TestMarshal_PreservesDecomposedText(t *testing.T) {
	rec := Record{"\u00e9": Int(1), "e\u0301": Int(2)}
	got, err := Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, "{\"e\u0301\":2,\"\u00e9\":1}", string(got))

	back, err := UnmarshalRecord(got)
	require.NoError(t, err)
	assert.Len(t, back, 2)
	assert.True(t, Equal(rec, back))
}

func TestMarshal_NilValueFails(t *testing.T) {
	_, err := Marshal(Record{"bad": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `record["bad"]`)
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	rec := Record{
		"context": Record{"k": String("v"), "n": Int(3), "ok": Bool(true)},
		"ids":     List{String("a"), String("b")},
		"none":    Null{},
	}
	data, err := Marshal(rec)
	require.NoError(t, err)

	decoded, err := UnmarshalRecord(data)
	require.NoError(t, err)
	assert.True(t, Equal(rec, decoded))
}

func TestUnmarshal_RejectsFloats(t *testing.T) {
	_, err := Unmarshal([]byte(`{"x": 1.5}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats")
}

func TestUnmarshal_LargeIntegers(t *testing.T) {
	v, err := Unmarshal([]byte(`9007199254740993`))
	require.NoError(t, err)
	assert.Equal(t, Int(9007199254740993), v)
}

func TestUnmarshalRecord_RejectsNonObject(t *testing.T) {
	_, err := UnmarshalRecord([]byte(`[1,2]`))
	require.Error(t, err)
}

func TestUnmarshal_TrailingData(t *testing.T) {
	_, err := Unmarshal([]byte(`{} {}`))
	require.Error(t, err)
}
