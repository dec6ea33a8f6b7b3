package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/epeers/refsync/internal/flatfiles"
	"github.com/epeers/refsync/internal/models"
)

// fakeAPI answers from canned bodies. failures[uri] is the number of times
// the uri fails before succeeding; -1 fails forever.
type fakeAPI struct {
	mu        sync.Mutex
	responses map[string]string
	failures  map[string]int
	calls     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{responses: map[string]string{}, failures: map[string]int{}}
}

func (f *fakeAPI) GetString(ctx context.Context, uri string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, uri)
	if n, ok := f.failures[uri]; ok && n != 0 {
		if n > 0 {
			f.failures[uri] = n - 1
		}
		return "", errors.New("503 service unavailable")
	}
	if body, ok := f.responses[uri]; ok {
		return body, nil
	}
	return `{"results":[]}`, nil
}

func (f *fakeAPI) callCount(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == uri {
			n++
		}
	}
	return n
}

func (f *fakeAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTransactions struct {
	mu        sync.Mutex
	rows      []models.ApiTransaction
	deleted   atomic.Bool
	deleteErr error
}

func (f *fakeTransactions) InsertTransaction(ctx context.Context, tx models.ApiTransaction) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, tx)
	return int64(len(f.rows)), nil
}

func (f *fakeTransactions) DeleteTransactionsForSource(ctx context.Context, source string) (int64, error) {
	time.Sleep(10 * time.Millisecond)
	f.deleted.Store(true)
	return 3, f.deleteErr
}

func (f *fakeTransactions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeRemoteFiles struct {
	mu        sync.Mutex
	rows      map[string]models.RemoteFile
	deleted   atomic.Bool
	deleteErr error
}

func newFakeRemoteFiles() *fakeRemoteFiles {
	return &fakeRemoteFiles{rows: map[string]models.RemoteFile{}}
}

func (f *fakeRemoteFiles) ListRemoteFiles(ctx context.Context, source, provider string) ([]models.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RemoteFile
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRemoteFiles) UpsertRemoteFile(ctx context.Context, r models.RemoteFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[r.SourceName] = r
	return nil
}

func (f *fakeRemoteFiles) DeleteRemoteFilesForSource(ctx context.Context, source string) (int64, error) {
	f.deleted.Store(true)
	return 0, f.deleteErr
}

type fakeSplits struct {
	mu     sync.Mutex
	stored []models.Split
}

func (f *fakeSplits) StoreSplits(ctx context.Context, splits []models.Split) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, splits...)
	return nil
}

type fakeObjects struct {
	objects map[string]string
	gets    atomic.Int32
}

func (f *fakeObjects) ListObjects(ctx context.Context, bucket, token string) (flatfiles.ListPage, error) {
	var page flatfiles.ListPage
	for k, body := range f.objects {
		page.Objects = append(page.Objects, flatfiles.ObjectInfo{Key: k, ETag: `"etag-` + k + `"`, Size: int64(len(body))})
	}
	return page, nil
}

func (f *fakeObjects) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	f.gets.Add(1)
	return io.NopCloser(bytes.NewReader([]byte(f.objects[key]))), nil
}
