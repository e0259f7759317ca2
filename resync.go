package framed

import (
	"strings"

	"github.com/indigo-web/utils/uf"
)

// marker is what resynchronization looks for. It's deliberately looser than
// contentLengthField, so a message split right after the field name is still found.
const marker = "Content-Length"

// FindNextMessage returns the offset of the first occurrence of the Content-Length field
// name in data. Bytes before the offset carry no recognizable message start and may be
// discarded by the caller.
//
// If there's no such occurrence, found is false and needed is a lower bound of how many
// more bytes are required to complete a marker that might be straddling the end of data.
// The search is best-effort: a payload containing the marker produces a false match.
// See Resync for a stricter alternative.
func FindNextMessage(data []byte) (offset, needed int, found bool) {
	if offset = strings.Index(uf.B2S(data), marker); offset != -1 {
		return offset, 0, true
	}

	return 0, len(marker) - partialSuffix(data, marker), false
}

// Resync is FindNextMessage, which also skips candidates at which ParseMessage fails.
// Candidates that are Pending are accepted, as nothing yet proves them wrong.
func Resync(data []byte) (offset, needed int, found bool) {
	for from := 0; ; {
		offset, needed, found = FindNextMessage(data[from:])
		if !found {
			return 0, needed, false
		}

		candidate := from + offset
		if _, err := ParseMessage(data[candidate:]); err == nil {
			return candidate, 0, true
		}

		from = candidate + 1
	}
}

// Discardable returns how many leading bytes of data can be dropped safely after the
// resynchronization failed to find anything. The tail that might be a beginning of the
// marker is preserved.
func Discardable(data []byte) int {
	return len(data) - partialSuffix(data, marker)
}

// partialSuffix returns the length of the longest suffix of data which is a proper prefix
// of lit.
func partialSuffix(data []byte, lit string) int {
	for k := min(len(data), len(lit)-1); k > 0; k-- {
		if uf.B2S(data[len(data)-k:]) == lit[:k] {
			return k
		}
	}

	return 0
}
