package nicolive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalStreamID(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		ok       bool
	}{
		{input: "346883570", expected: "346883570", ok: true},
		{input: "lv346883570", expected: "346883570", ok: true},
		{input: " lv1 ", expected: "1", ok: true},
		{input: "", ok: false},
		{input: "lv", ok: false},
		{input: "abc", ok: false},
		{input: "lv12a3", ok: false},
		{input: "co12345", ok: false},
	}

	for _, test := range testCases {
		id, err := CanonicalStreamID(test.input)
		if !test.ok {
			require.ErrorIs(t, err, ErrInvalidIdentifier, "input %q", test.input)
			continue
		}
		require.NoError(t, err, "input %q", test.input)
		require.Equal(t, test.expected, id)
	}
}

func TestWatchURL(t *testing.T) {
	link, err := WatchURL(DefaultBaseURL, "346883570")
	require.NoError(t, err)
	require.Equal(t, "https://live.nicovideo.jp/watch/lv346883570", link)

	// deterministic, prefix or not
	again, err := WatchURL(DefaultBaseURL+"/", "lv346883570")
	require.NoError(t, err)
	require.Equal(t, link, again)

	_, err = WatchURL(DefaultBaseURL, "not-an-id")
	require.True(t, errors.Is(err, ErrInvalidIdentifier))
}

func TestDefaultHeaders(t *testing.T) {
	headers := DefaultHeaders()
	require.NotEmpty(t, headers["user-agent"])
	require.NotEmpty(t, headers["accept"])
}
