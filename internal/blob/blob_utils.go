package blob

import (
	"strings"
	"unicode/utf8"
)

// S3 DeleteObjects accepts at most this many keys per request
const maxDeleteBatch = 1000

// Validate a key for S3 and CDN path compatibility
func ValidateKey(key string) bool {
	// S3 keys must be between 1 and 1024 bytes long
	if len(key) == 0 || len(key) > 1024 {
		return false
	}

	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}

	// dots are fine inside a name, only whole "." or ".." segments escape the prefix
	for _, part := range strings.Split(key, "/") {
		if part == "." || part == ".." {
			return false
		}
	}

	// S3 keys must be valid UTF-8 strings
	return utf8.ValidString(key)
}

func chunkKeys(keys []string, size int) [][]string {
	if size <= 0 {
		size = maxDeleteBatch
	}
	chunks := make([][]string, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
