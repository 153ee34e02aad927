package source

import (
	"strconv"
	"strings"

	leaferrors "github.com/jmurray2011/leaf/internal/errors"
)

// Cursor format: "<uri>#<seek>", for example
//   file:///srv/app/storage/logs/laravel.log#-81920
//   s3://bucket/logs/laravel.log?region=eu-west-1#40960
//
// The seek half follows pager.Request.Seek: 0 is the newest page, a negative
// value reads back from its absolute value, a positive one reads forward.

// MakeCursor joins a source URI and a seek value.
func MakeCursor(uri string, seek int64) string {
	return uri + "#" + strconv.FormatInt(seek, 10)
}

// ParseCursor splits a cursor into its URI and seek. A string without a
// "#" is a plain URI with seek 0.
func ParseCursor(cursor string) (string, int64, error) {
	idx := strings.LastIndex(cursor, "#")
	if idx < 0 {
		return cursor, 0, nil
	}
	uri := cursor[:idx]
	if uri == "" {
		return "", 0, leaferrors.InvalidSeekError(cursor)
	}
	seek, err := ParseSeek(cursor[idx+1:])
	if err != nil {
		return "", 0, err
	}
	return uri, seek, nil
}

// ParseSeek parses a signed byte offset as typed on the command line.
func ParseSeek(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	seek, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, leaferrors.InvalidSeekError(s)
	}
	return seek, nil
}
