package snapshot

import (
	"regexp"
	"strings"
	"time"
)

// TimestampFormat is the fixed minute-resolution timestamp in snapshot names.
const TimestampFormat = "2006-01-02-1504"

const timestampPattern = `\d{4}-\d{2}-\d{2}-\d{4}`

// Name builds "prefix_label_YYYY-MM-DD-HHMM".
func Name(prefix, label string, t time.Time) string {
	return prefix + "_" + label + "_" + t.Format(TimestampFormat)
}

// Dir returns the snapshot directory for a subvolume path.
func Dir(subvolume, dirName string) string {
	return strings.TrimSuffix(subvolume, "/") + "/" + dirName
}

// Pattern matches basenames belonging to one rotation. Older releases joined
// the label and timestamp with "-", so both separators are recognized.
func Pattern(prefix, label string) *regexp.Regexp {
	return regexp.MustCompile(
		"^" + regexp.QuoteMeta(prefix+"_"+label) + "[_-]" + timestampPattern + "$",
	)
}
