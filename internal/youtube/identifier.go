package youtube

import (
	"net/url"
	"strings"
)

var channelHosts = map[string]bool{
	"www.youtube.com": true,
	"youtube.com":     true,
}

// ExtractChannelIdentifier returns the raw channel ID for /channel/<id> URLs
// and the "@"-prefixed handle for /@<handle> URLs. Anything else, including
// strings that do not parse as URLs, yields ok == false.
func ExtractChannelIdentifier(rawURL string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}

	if !channelHosts[strings.ToLower(parsed.Hostname())] {
		return "", false
	}

	path := parsed.Path
	switch {
	case strings.HasPrefix(path, "/channel/"):
		segments := strings.Split(path, "/")
		if len(segments) < 3 || segments[2] == "" {
			return "", false
		}
		return segments[2], true

	case strings.HasPrefix(path, "/@"):
		handle := strings.TrimPrefix(path, "/")
		if handle == "@" {
			return "", false
		}
		return handle, true
	}

	return "", false
}

// IsHandle reports whether identifier is an "@"-prefixed channel handle.
func IsHandle(identifier string) bool {
	return strings.HasPrefix(identifier, "@")
}
