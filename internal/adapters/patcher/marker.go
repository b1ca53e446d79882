// Package patcher reassembles combined output artifacts from cached and
// freshly compiled per-file sections, guided by marker lines embedded in the
// artifact text.
package patcher

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker line shape: `; ==== FILE: <path>:0x<16 hex digits> ====`.
const (
	markerPrefix = "; ==== FILE: "
	markerSuffix = " ===="
)

// FormatMarker renders the marker line (without trailing newline) for a file
// section.
func FormatMarker(path string, hash uint64) string {
	return fmt.Sprintf("%s%s:0x%016x%s", markerPrefix, path, hash, markerSuffix)
}

// ParseMarker decodes a marker line. ok is false when the line is not a marker
// at all; isMarker distinguishes "not a marker" from "a marker that fails to
// parse", which callers treat as cache corruption.
func ParseMarker(line string) (path string, hash uint64, ok, isMarker bool) {
	if !strings.HasPrefix(line, markerPrefix) || !strings.HasSuffix(line, markerSuffix) {
		return "", 0, false, false
	}

	body := line[len(markerPrefix) : len(line)-len(markerSuffix)]

	// Paths may contain colons; the path/hash separator is the last one.
	sep := strings.LastIndex(body, ":")
	if sep < 0 {
		return "", 0, false, true
	}
	path, hexPart := body[:sep], body[sep+1:]
	if path == "" || !strings.HasPrefix(hexPart, "0x") || len(hexPart) != 18 {
		return "", 0, false, true
	}

	hash, err := strconv.ParseUint(hexPart[2:], 16, 64)
	if err != nil {
		return "", 0, false, true
	}
	return path, hash, true, true
}
