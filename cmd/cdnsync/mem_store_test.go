package main

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/openmined/cdnsync/internal/blob"
)

// memStore is a single-page, in-memory bucket
type memStore struct {
	mu      sync.Mutex
	objects map[string]int64
	puts    []string
	listErr error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]int64)}
}

func (m *memStore) ListObjectsPage(ctx context.Context, params *blob.ListObjectsParams) (*blob.ListObjectsPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, params.Prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	page := &blob.ListObjectsPage{}
	for _, k := range keys {
		page.Objects = append(page.Objects, &blob.BlobInfo{Key: k, Size: m.objects[k]})
	}
	return page, nil
}

func (m *memStore) PutObject(ctx context.Context, params *blob.PutObjectParams) (*blob.PutObjectResponse, error) {
	n, err := io.Copy(io.Discard, params.Body)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[params.Key] = n
	m.puts = append(m.puts, params.Key)
	return &blob.PutObjectResponse{Key: params.Key, Size: n}, nil
}

func (m *memStore) DeleteObjects(ctx context.Context, bucket string, keys []string) (*blob.DeleteObjectsResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := &blob.DeleteObjectsResult{}
	for _, k := range keys {
		delete(m.objects, k)
		res.Deleted = append(res.Deleted, k)
	}
	return res, nil
}

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
