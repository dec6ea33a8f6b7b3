package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RemoteFile is a ledger row describing an object previously copied from a remote store.
// Maps to the remote_files table, unique on (source, source_name).
type RemoteFile struct {
	Source     string     `json:"source"`
	Provider   string     `json:"provider"`
	HashCode   string     `json:"hash_code"`
	Location   string     `json:"location"`    // bucket
	SourceName string     `json:"source_name"` // remote key
	LocalName  string     `json:"local_name"`
	Size       int64      `json:"size"`
	UpdateDate time.Time  `json:"update_date"`
	ProcessID  *uuid.UUID `json:"process_id"`
}

// Matches reports whether this record describes exactly the given remote object.
// Key, hash and size must all agree; a change to any of them means the content changed.
func (r RemoteFile) Matches(key, hash string, size int64) bool {
	return r.SourceName != "" && r.HashCode != "" &&
		r.SourceName == key &&
		r.HashCode == NormalizeETag(hash) &&
		r.Size == size
}

// NormalizeETag strips the surrounding quotes S3-compatible stores put on ETags.
func NormalizeETag(etag string) string {
	return strings.Trim(etag, `"`)
}
