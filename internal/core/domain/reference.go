package domain

import (
	"fmt"
	"time"
)

// MaxReferenceLength is the longest payment reference the processor accepts.
const MaxReferenceLength = 32

// timestamp suffix: _YYYYMMDD_HHMMSSmmm
const referenceSuffixLength = 19

// MaxReferencePrefixLength is the longest prefix NewReference keeps whole.
const MaxReferencePrefixLength = MaxReferenceLength - referenceSuffixLength

// NewReference builds a time based payment reference, PREFIX_YYYYMMDD_HHMMSSmmm.
// Prefixes longer than MaxReferencePrefixLength are cut from the right so the
// reference keeps its leading prefix and the full timestamp.
// Two calls within the same millisecond collide, so callers issuing references
// in a tight loop must vary the prefix.
func NewReference(prefix string, now time.Time) string {
	if len(prefix) > MaxReferencePrefixLength {
		prefix = prefix[:MaxReferencePrefixLength]
	}
	return fmt.Sprintf("%s_%s%03d", prefix, now.Format("20060102_150405"), now.Nanosecond()/int(time.Millisecond))
}
