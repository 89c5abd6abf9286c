package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ridehubhq/ridehub/internal/app/system/media"
)

// FakeMedia is an in-memory media.Store for handler tests. It records
// uploads and deletes and can be told to fail.
type FakeMedia struct {
	mu       sync.Mutex
	seq      int
	Uploads  []string // keys in upload order
	Deletes  []string // keys in delete order
	FailNext bool
}

var _ media.Store = (*FakeMedia)(nil)

func NewFakeMedia() *FakeMedia {
	return &FakeMedia{}
}

func (f *FakeMedia) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (media.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailNext {
		f.FailNext = false
		return media.Object{}, fmt.Errorf("fake media: upload failure")
	}

	f.seq++
	key := fmt.Sprintf("%s/fake-%d", folder, f.seq)
	f.Uploads = append(f.Uploads, key)
	return media.Object{Key: key, URL: "https://media.test/" + key}, nil
}

func (f *FakeMedia) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailNext {
		f.FailNext = false
		return fmt.Errorf("fake media: delete failure")
	}
	if key != "" {
		f.Deletes = append(f.Deletes, key)
	}
	return nil
}
