package tool

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teachme/platform/internal/domain"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "create_organization", "create_organization"},
		{"hyphenated title case", "Create-Organization", "create_organization"},
		{"spaces", "create organization", "create_organization"},
		{"mixed punctuation run", "Create -- Organization!!", "create_organization"},
		{"camel-ish with dots", "Invite.Teacher", "invite_teacher"},
		{"leading and trailing junk", "  __get_me__  ", "get_me"},
		{"digits survive", "v2 stats", "v2_stats"},
		{"empty", "", ""},
		{"only punctuation", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestResultString(t *testing.T) {
	t.Run("success carries data", func(t *testing.T) {
		res := OKResult(map[string]any{"id": "abc"})

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.String()), &decoded))
		assert.Equal(t, true, decoded["ok"])
		assert.Equal(t, map[string]any{"id": "abc"}, decoded["data"])
		assert.NotContains(t, decoded, "error")
	})

	t.Run("failure carries code and error", func(t *testing.T) {
		res := Fail(CodeAuthorization, "not allowed")

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.String()), &decoded))
		assert.Equal(t, false, decoded["ok"])
		assert.Equal(t, CodeAuthorization, decoded["code"])
		assert.Equal(t, "not allowed", decoded["error"])
	})

	t.Run("unserializable payload degrades in-band", func(t *testing.T) {
		res := OKResult(map[string]any{"bad": make(chan int)})

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.String()), &decoded))
		assert.Equal(t, false, decoded["ok"])
		assert.Equal(t, CodeInternal, decoded["code"])
	})
}

func TestParseArguments(t *testing.T) {
	t.Run("empty payload yields empty map", func(t *testing.T) {
		args, err := ParseArguments("")
		require.NoError(t, err)
		assert.Empty(t, args)

		args, err = ParseArguments("   ")
		require.NoError(t, err)
		assert.Empty(t, args)
	})

	t.Run("valid json decodes", func(t *testing.T) {
		args, err := ParseArguments(`{"name":"Northwind","count":3}`)
		require.NoError(t, err)
		assert.Equal(t, "Northwind", args["name"])
		assert.Equal(t, float64(3), args["count"])
	})

	t.Run("malformed json errors", func(t *testing.T) {
		_, err := ParseArguments(`{"name":`)
		assert.Error(t, err)
	})
}

func TestContextActiveOrg(t *testing.T) {
	explicit := uuid.New()
	bindingOrg := uuid.New()
	sessionOrg := uuid.New()

	t.Run("explicit org wins", func(t *testing.T) {
		tc := &Context{
			OrgID:   &explicit,
			Binding: &domain.ThreadBinding{OrgID: &bindingOrg},
			Session: &domain.Session{ActiveOrgID: &sessionOrg},
		}
		require.NotNil(t, tc.ActiveOrg())
		assert.Equal(t, explicit, *tc.ActiveOrg())
	})

	t.Run("binding org beats session org", func(t *testing.T) {
		tc := &Context{
			Binding: &domain.ThreadBinding{OrgID: &bindingOrg},
			Session: &domain.Session{ActiveOrgID: &sessionOrg},
		}
		require.NotNil(t, tc.ActiveOrg())
		assert.Equal(t, bindingOrg, *tc.ActiveOrg())
	})

	t.Run("session org is the last resort", func(t *testing.T) {
		tc := &Context{Session: &domain.Session{ActiveOrgID: &sessionOrg}}
		require.NotNil(t, tc.ActiveOrg())
		assert.Equal(t, sessionOrg, *tc.ActiveOrg())
	})

	t.Run("nothing resolved", func(t *testing.T) {
		tc := &Context{}
		assert.Nil(t, tc.ActiveOrg())
	})
}

func TestStringArg(t *testing.T) {
	args := map[string]any{
		"name":  "  Northwind  ",
		"blank": "   ",
		"num":   7,
	}

	v, ok := stringArg(args, "name")
	assert.True(t, ok)
	assert.Equal(t, "Northwind", v)

	_, ok = stringArg(args, "blank")
	assert.False(t, ok)

	_, ok = stringArg(args, "num")
	assert.False(t, ok)

	_, ok = stringArg(args, "missing")
	assert.False(t, ok)

	assert.Equal(t, "Northwind", optionalStringArg(args, "name"))
	assert.Equal(t, "", optionalStringArg(args, "missing"))
}
