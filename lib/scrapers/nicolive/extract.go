package nicolive

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractEmbeddedPayload scans the watch page for the script element
// carrying the data-props attribute and returns its raw JSON value.
// The attribute value comes back entity-unescaped from the html parser.
func ExtractEmbeddedPayload(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse watch page html: %w", err)
	}

	sel := doc.Find("script[data-props]").First()
	if sel.Length() == 0 {
		return "", ErrMalformedPage
	}

	raw := sel.AttrOr("data-props", "")
	if strings.TrimSpace(raw) == "" {
		return "", ErrMalformedPage
	}
	return raw, nil
}
