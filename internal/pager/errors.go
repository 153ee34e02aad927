package pager

import "errors"

// ErrSourceUnavailable is returned when the log source cannot be opened,
// stat'ed, or is not a regular, seekable file. Callers should treat it as
// "no entries, no navigation" rather than a fatal error.
var ErrSourceUnavailable = errors.New("log source unavailable")
