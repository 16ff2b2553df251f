package validate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reinstallSchema = Schema{
	{Name: "name", Kind: KindString, Required: true},
	{Name: "same_policy", Kind: KindBoolean, Default: false},
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		raw  string
		want Kind
	}{
		{`true`, KindBoolean},
		{`"abc"`, KindString},
		{`1.5`, KindNumber},
		{`[false]`, KindArray},
		{`{"abc": 1}`, KindObject},
		{`null`, KindNull},
	}
	for _, tc := range cases {
		var v any
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &v))
		assert.Equal(t, tc.want, KindOf(v), tc.raw)
	}
}

func TestValidateAppliesDefault(t *testing.T) {
	p, err := reinstallSchema.Validate(decode(t, `{"name": "node1"}`))
	require.NoError(t, err)
	assert.Equal(t, "node1", p.String("name"))
	assert.False(t, p.Bool("same_policy"))
}

func TestValidateRejectsWrongKind(t *testing.T) {
	cases := map[string]string{
		`[false]`:    "same_policy should be a boolean, but was actually a array",
		`"abc"`:      "same_policy should be a boolean, but was actually a string",
		`{"abc": 1}`: "same_policy should be a boolean, but was actually a object",
		`null`:       "same_policy should be a boolean, but was actually a null",
	}
	for raw, want := range cases {
		_, err := reinstallSchema.Validate(decode(t, `{"name": "n", "same_policy": `+raw+`}`))
		require.Error(t, err, raw)
		assert.Equal(t, want, err.Error())
		assert.True(t, errors.Is(err, ErrInvalid))

		var verr *Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "same_policy", verr.Param)
	}
}

func TestValidateRequired(t *testing.T) {
	_, err := reinstallSchema.Validate(decode(t, `{"same_policy": true}`))
	require.Error(t, err)
	assert.Equal(t, "name is a required attribute, but it is not present", err.Error())
}

func TestValidateNameKindBeforeFlag(t *testing.T) {
	_, err := reinstallSchema.Validate(decode(t, `{"name": 7, "same_policy": "x"}`))
	require.Error(t, err)
	assert.Equal(t, "name should be a string, but was actually a number", err.Error())
}

func TestValidateExtraAttribute(t *testing.T) {
	_, err := reinstallSchema.Validate(decode(t, `{"name": "n", "force": true}`))
	require.Error(t, err)
	assert.Equal(t, "extra attribute force was present, but is not allowed", err.Error())
}
