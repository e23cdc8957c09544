package nicolive

import (
	"fmt"
	"regexp"
	"strings"
)

const DefaultBaseURL = "https://live.nicovideo.jp"

var streamIDRegex = regexp.MustCompile(`^(?:lv)?([0-9]+)$`)

// CanonicalStreamID validates a stream identifier and strips an
// optional "lv" prefix.
func CanonicalStreamID(id string) (string, error) {
	groups := streamIDRegex.FindStringSubmatch(strings.TrimSpace(id))
	if groups == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return groups[1], nil
}

// WatchURL builds the canonical watch page URL for a stream identifier.
func WatchURL(base, id string) (string, error) {
	canonical, err := CanonicalStreamID(id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/watch/lv%s", strings.TrimSuffix(base, "/"), canonical), nil
}

// DefaultHeaders is the fixed header set the watch page origin expects.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"user-agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
		"accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}
}
