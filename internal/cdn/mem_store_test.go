package cdn

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/openmined/cdnsync/internal/blob"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory blob.ObjectStore with injectable failures
type memStore struct {
	mu       sync.Mutex
	objects  map[string]*blob.BlobInfo
	pageSize int

	listErr     error
	listErrPage int
	putErr      map[string]error
	putDelay    map[string]time.Duration
	deleteErr   error
	deleteFails map[string]string

	listCalls   int
	putKeys     []string
	putParams   []*blob.PutObjectParams
	deleteCalls int
}

func newMemStore() *memStore {
	return &memStore{
		objects:     make(map[string]*blob.BlobInfo),
		pageSize:    2,
		putErr:      make(map[string]error),
		putDelay:    make(map[string]time.Duration),
		deleteFails: make(map[string]string),
	}
}

func (m *memStore) set(key string, size int64) {
	m.objects[key] = &blob.BlobInfo{Key: key, Size: size, LastModified: time.Unix(1700000000, 0)}
}

func (m *memStore) ListObjectsPage(_ context.Context, params *blob.ListObjectsParams) (*blob.ListObjectsPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if m.listErr != nil && m.listCalls > m.listErrPage {
		return nil, m.listErr
	}

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if len(params.Prefix) == 0 || (len(k) >= len(params.Prefix) && k[:len(params.Prefix)] == params.Prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if params.ContinuationToken != "" {
		start, _ = strconv.Atoi(params.ContinuationToken)
	}
	end := min(start+m.pageSize, len(keys))

	page := &blob.ListObjectsPage{}
	for _, k := range keys[start:end] {
		obj := *m.objects[k]
		page.Objects = append(page.Objects, &obj)
	}
	if end < len(keys) {
		page.IsTruncated = true
		page.NextContinuationToken = strconv.Itoa(end)
	}
	return page, nil
}

func (m *memStore) PutObject(ctx context.Context, params *blob.PutObjectParams) (*blob.PutObjectResponse, error) {
	m.mu.Lock()
	m.putKeys = append(m.putKeys, params.Key)
	m.putParams = append(m.putParams, params)
	err := m.putErr[params.Key]
	delay := m.putDelay[params.Key]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(params.Key, int64(len(data)))
	return &blob.PutObjectResponse{Key: params.Key, Size: int64(len(data))}, nil
}

func (m *memStore) DeleteObjects(_ context.Context, _ string, keys []string) (*blob.DeleteObjectsResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalls++
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}

	res := &blob.DeleteObjectsResult{}
	for _, k := range keys {
		if code, ok := m.deleteFails[k]; ok {
			res.Errors = append(res.Errors, blob.DeleteError{Key: k, Code: code, Message: "denied"})
			continue
		}
		delete(m.objects, k)
		res.Deleted = append(res.Deleted, k)
	}
	return res, nil
}

func (m *memStore) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.putKeys)
}

var _ blob.ObjectStore = (*memStore)(nil)

// recordingSink captures emitted events
type recordingSink struct {
	events []Event
}

func (r *recordingSink) Emit(e Event) {
	r.events = append(r.events, e)
}

func (r *recordingSink) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// writeAssets creates files under a temp root and returns them in the given order
func writeAssets(t *testing.T, files map[string]string, order ...string) []*LocalAsset {
	t.Helper()
	root := t.TempDir()

	assets := make([]*LocalAsset, 0, len(order))
	for _, rel := range order {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(files[rel]), 0o644))
		assets = append(assets, &LocalAsset{RelPath: rel, AbsPath: abs, Size: int64(len(files[rel]))})
	}
	return assets
}
