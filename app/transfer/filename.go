package transfer

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const maxFilenameBytes = 200

// FilenameFromURL returns the last segment of the URL path. When the path
// ends with a slash or is empty, a name is synthesized from now:
// file_<unix seconds>.bin.
func FilenameFromURL(rawURL string, now time.Time) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	escaped := u.EscapedPath()
	segment, err := url.PathUnescape(escaped[strings.LastIndex(escaped, "/")+1:])
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}

	name := sanitizeFilename(segment)
	if name == "" || name == "." || name == ".." {
		return fmt.Sprintf("file_%d.bin", now.Unix()), nil
	}

	return name, nil
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return '_'
		case unicode.IsControl(r):
			return '_'
		case r == utf8.RuneError:
			return '_'
		}
		return r
	}, name)

	name = strings.TrimSpace(name)
	if len(name) <= maxFilenameBytes {
		return name
	}

	ext := path.Ext(name)
	if len(ext) > 16 {
		ext = ""
	}
	base := strings.TrimSuffix(name, ext)
	return truncateUTF8(base, maxFilenameBytes-len(ext)) + ext
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
