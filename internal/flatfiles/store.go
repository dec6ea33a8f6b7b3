package flatfiles

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one object in a listing
type ObjectInfo struct {
	Key          string
	ETag         string
	Size         int64
	LastModified time.Time
}

// ListPage is one page of a bucket listing. NextToken is empty on the last page.
type ListPage struct {
	Objects   []ObjectInfo
	NextToken string
}

// ObjectStore is the remote side of a sync: paginated listing plus streaming download.
type ObjectStore interface {
	ListObjects(ctx context.Context, bucket, token string) (ListPage, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
