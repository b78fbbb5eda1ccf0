package rest

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerb(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected Verb
	}{
		{"get", VerbGet},
		{"GET", VerbGet},
		{" Patch ", VerbPatch},
		{"delete", VerbDelete},
		{"OPTIONS", VerbOptions},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			verb, err := ParseVerb(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, verb)
		})
	}
}

func TestParseVerb_Unknown(t *testing.T) {
	t.Parallel()

	_, err := ParseVerb("fetch")
	require.Error(t, err)
	assert.True(t, IsUnknownMember(err))

	var memberErr *UnknownMemberError

	require.True(t, errors.As(err, &memberErr))
	assert.Equal(t, "fetch", memberErr.Name)
	assert.False(t, memberErr.Declared)
	assert.Contains(t, err.Error(), "get, post, put, patch, delete, head, options")

	_, err = ParseVerb("query")
	require.ErrorAs(t, err, &memberErr)
	assert.True(t, memberErr.Declared)
	assert.Contains(t, err.Error(), "declared method")
}

func TestVerb_Method(t *testing.T) {
	t.Parallel()

	expected := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodHead,
		http.MethodOptions,
	}

	verbs := Verbs()
	require.Len(t, verbs, len(expected))

	for i, verb := range verbs {
		assert.Equal(t, expected[i], verb.Method())
	}
}

func TestVerb_HasBody(t *testing.T) {
	t.Parallel()

	assert.True(t, VerbPost.HasBody())
	assert.True(t, VerbPut.HasBody())
	assert.True(t, VerbPatch.HasBody())
	assert.False(t, VerbGet.HasBody())
	assert.False(t, VerbDelete.HasBody())
}
