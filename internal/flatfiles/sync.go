package flatfiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/epeers/refsync/internal/models"
	"github.com/epeers/refsync/internal/util"
)

// Provider tags ledger rows written by the S3 sync
const Provider = "AWS"

// Ledger records which remote objects have already been copied
type Ledger interface {
	ListRemoteFiles(ctx context.Context, source, provider string) ([]models.RemoteFile, error)
	UpsertRemoteFile(ctx context.Context, f models.RemoteFile) error
}

// Options configures one sync
type Options struct {
	Source      string
	Bucket      string
	Prefixes    []string
	Dir         string
	YearsOfData int
	ProcessID   *uuid.UUID
}

// SyncResult summarizes a sync
type SyncResult struct {
	Listed     int   `json:"listed"`
	Matched    int   `json:"matched"`
	Skipped    int   `json:"skipped"`
	Downloaded int   `json:"downloaded"`
	Failed     int   `json:"failed"`
	Bytes      int64 `json:"bytes"`
}

// Syncer mirrors in-scope objects from an ObjectStore into a local directory
type Syncer struct {
	store  ObjectStore
	ledger Ledger
	opts   Options

	// Now supplies the current time for the retention cutoff
	Now func() time.Time
	// OnError is called for each object that could not be copied
	OnError func(key string, err error)
}

// NewSyncer creates a new Syncer
func NewSyncer(store ObjectStore, ledger Ledger, opts Options) *Syncer {
	if opts.Bucket == "" {
		opts.Bucket = DefaultBucket
	}
	return &Syncer{
		store:  store,
		ledger: ledger,
		opts:   opts,
		Now:    time.Now,
	}
}

// Sync lists the bucket, keeps objects matching a prefix pattern dated after
// the cutoff, and copies every one the ledger does not already hold with the
// same key, hash and size. A failure on one object does not stop the others;
// listing and ledger read failures are returned.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	matcher, err := NewMatcher(s.opts.Prefixes, util.LookbackCutoff(s.Now(), s.opts.YearsOfData))
	if err != nil {
		return res, err
	}

	candidates, err := s.list(ctx, matcher, &res)
	if err != nil {
		return res, err
	}
	if len(candidates) == 0 {
		return res, nil
	}

	rows, err := s.ledger.ListRemoteFiles(ctx, s.opts.Source, Provider)
	if err != nil {
		return res, fmt.Errorf("failed to load remote file ledger: %w", err)
	}
	known := make(map[string]models.RemoteFile, len(rows))
	for _, r := range rows {
		known[r.SourceName] = r
	}

	for _, obj := range candidates {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if rf, ok := known[obj.Key]; ok && rf.Matches(obj.Key, obj.ETag, obj.Size) {
			res.Skipped++
			continue
		}

		n, err := s.copyObject(ctx, obj)
		if err != nil {
			res.Failed++
			log.WithFields(log.Fields{"key": obj.Key, "bucket": s.opts.Bucket}).Errorf("flat file sync failed: %v", err)
			if s.OnError != nil {
				s.OnError(obj.Key, err)
			}
			continue
		}
		res.Downloaded++
		res.Bytes += n
	}

	log.WithFields(log.Fields{
		"listed":     res.Listed,
		"matched":    res.Matched,
		"skipped":    res.Skipped,
		"downloaded": res.Downloaded,
		"failed":     res.Failed,
	}).Info("flat file sync complete")
	return res, nil
}

func (s *Syncer) list(ctx context.Context, matcher *Matcher, res *SyncResult) ([]ObjectInfo, error) {
	var kept []ObjectInfo
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := s.store.ListObjects(ctx, s.opts.Bucket, token)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Objects {
			res.Listed++
			if _, ok := matcher.Match(obj.Key); ok {
				kept = append(kept, obj)
			}
		}
		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}
	res.Matched = len(kept)
	return kept, nil
}

// copyObject replaces the local file for obj and records it in the ledger.
func (s *Syncer) copyObject(ctx context.Context, obj ObjectInfo) (int64, error) {
	local := LocalName(obj.Key)
	if local == "" {
		return 0, fmt.Errorf("could not derive local file name from %q", obj.Key)
	}
	path := filepath.Join(s.opts.Dir, local)

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("failed to remove stale %s: %w", path, err)
	}

	body, err := s.store.GetObject(ctx, s.opts.Bucket, obj.Key)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to copy %s: %w", obj.Key, err)
	}

	err = s.ledger.UpsertRemoteFile(ctx, models.RemoteFile{
		Source:     s.opts.Source,
		Provider:   Provider,
		HashCode:   models.NormalizeETag(obj.ETag),
		Location:   s.opts.Bucket,
		SourceName: obj.Key,
		LocalName:  local,
		Size:       obj.Size,
		UpdateDate: obj.LastModified.UTC(),
		ProcessID:  s.opts.ProcessID,
	})
	return n, err
}
