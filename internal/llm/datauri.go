package llm

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDataURI is returned for anything that is not data:<mime>;base64,<payload>.
var ErrInvalidDataURI = errors.New("invalid data URI: expected data:<mimetype>;base64,<encoded_data>")

// ParseDataURI decodes a base64 data URI into an Image.
func ParseDataURI(uri string) (*Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidDataURI
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}

	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mimeType == "" || !strings.Contains(mimeType, "/") {
		return nil, ErrInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURI
	}

	return &Image{MIMEType: strings.ToLower(mimeType), Data: data}, nil
}

// DataURI re-encodes the image for providers that take URLs.
func (i *Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}
