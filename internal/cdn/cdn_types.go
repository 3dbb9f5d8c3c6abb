package cdn

import (
	"strings"
	"time"

	"github.com/openmined/cdnsync/internal/blob"
)

// LocalAsset is a file discovered under the asset root
type LocalAsset struct {
	// RelPath is relative to the asset root and always uses forward slashes
	RelPath string
	AbsPath string
	Size    int64
}

// RemoteObject is one entry of a bucket listing
type RemoteObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

func (o *RemoteObject) LastModifiedEpoch() int64 {
	if o.LastModified.IsZero() {
		return 0
	}
	return o.LastModified.Unix()
}

// Inventory maps object keys to their remote metadata
type Inventory map[string]*RemoteObject

// UploadPlan lists the assets to transfer, in local enumeration order
type UploadPlan []*LocalAsset

// SyncResult summarizes a sync run
type SyncResult struct {
	// Uploaded counts objects transferred successfully
	Uploaded int
	// Planned is the size of the plan that was executed
	Planned int
	// Failed is the asset whose transfer aborted the run, nil on success
	Failed    *LocalAsset
	Succeeded bool
}

// PurgeResult summarizes a purge run
type PurgeResult struct {
	Deleted      int
	AlreadyEmpty bool
}

// NormalizePath turns a local relative path into the object key suffix
func NormalizePath(relPath string) string {
	p := strings.ReplaceAll(relPath, "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return strings.TrimLeft(p, "/")
}

// ObjectKey joins the key prefix and a local relative path.
// The prefix is used verbatim, so it must carry its own trailing slash.
func ObjectKey(prefix, relPath string) string {
	return prefix + NormalizePath(relPath)
}

// ValidatePrefix rejects key prefixes that cannot form valid object keys,
// such as a leading slash or "." and ".." segments. Empty is allowed.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	if !blob.ValidateKey(strings.TrimSuffix(prefix, "/")) {
		return configError("prefix", "invalid key prefix %q", prefix)
	}
	return nil
}
