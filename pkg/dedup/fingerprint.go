package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Fingerprint hashes normalized post content: lowercased trimmed text plus
// the sorted media URLs. Two posts with equal fingerprints are duplicates
// even when their IDs differ, which covers cross-posted and lightly edited
// repeats.
func Fingerprint(text string, mediaURLs []string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if len(mediaURLs) > 0 {
		sorted := make([]string, len(mediaURLs))
		copy(sorted, mediaURLs)
		sort.Strings(sorted)
		normalized += strings.Join(sorted, "|")
	}
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
