package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	img, err := ParseDataURI("data:image/PNG;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte("hello"), img.Data)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", img.DataURI())
}

func TestParseDataURI_Invalid(t *testing.T) {
	cases := map[string]string{
		"no scheme":      "image/png;base64,aGVsbG8=",
		"no comma":       "data:image/png;base64",
		"not base64":     "data:image/png,aGVsbG8=",
		"missing mime":   "data:;base64,aGVsbG8=",
		"bad payload":    "data:image/png;base64,!!!",
		"empty payload":  "data:image/png;base64,",
		"plain text url": "https://example.com/a.png",
	}
	for name, uri := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataURI(uri)
			assert.ErrorIs(t, err, ErrInvalidDataURI)
		})
	}
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("Here you go: {\"a\":1} hope it helps"))
	assert.Equal(t, `[1,2]`, CleanJSON(" [1,2] "))
	assert.Equal(t, "no json", CleanJSON("no json"))
}
