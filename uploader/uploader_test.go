package uploader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// stubBackend maps payload -> URL and fails payloads listed in fail.
type stubBackend struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls int
}

func (s *stubBackend) UploadImage(ctx context.Context, payload, folder, publicID string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	raw := strings.TrimPrefix(payload, "data:image/jpeg;base64,")
	if s.fail[raw] {
		return "", errors.New("upstream rejected asset")
	}
	return fmt.Sprintf("https://cdn.test/%s/%s", folder, raw), nil
}

func TestUploadBatch_PreservesOrder(t *testing.T) {
	u := NewPhotoUploader(&stubBackend{}, zap.NewNop())

	urls := u.UploadBatch(context.Background(), []string{"aaa", "bbb", "ccc"}, "photos")
	want := []string{
		"https://cdn.test/photos/aaa",
		"https://cdn.test/photos/bbb",
		"https://cdn.test/photos/ccc",
	}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %d", len(want), len(urls))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("order not preserved at %d: got %s want %s", i, urls[i], want[i])
		}
	}
}

func TestUploadBatch_DropsFailuresWithoutAborting(t *testing.T) {
	backend := &stubBackend{fail: map[string]bool{"bbb": true}}
	u := NewPhotoUploader(backend, zap.NewNop())

	urls := u.UploadBatch(context.Background(), []string{"aaa", "bbb", "ccc"}, "photos")
	if len(urls) != 2 {
		t.Fatalf("expected 2 surviving urls, got %d", len(urls))
	}
	if urls[0] != "https://cdn.test/photos/aaa" || urls[1] != "https://cdn.test/photos/ccc" {
		t.Fatalf("survivors out of order: %v", urls)
	}
}

func TestUploadBatch_AllFailuresYieldEmptyList(t *testing.T) {
	backend := &stubBackend{fail: map[string]bool{"aaa": true, "bbb": true, "ccc": true}}
	u := NewPhotoUploader(backend, zap.NewNop())

	urls := u.UploadBatch(context.Background(), []string{"aaa", "bbb", "ccc"}, "photos")
	if len(urls) != 0 {
		t.Fatalf("expected empty list, got %v", urls)
	}
	if backend.calls != 3 {
		t.Fatalf("expected every asset attempted, got %d calls", backend.calls)
	}
}

func TestUploadBatch_EmptyInput(t *testing.T) {
	u := NewPhotoUploader(&stubBackend{}, zap.NewNop())
	if urls := u.UploadBatch(context.Background(), nil, "photos"); len(urls) != 0 {
		t.Fatalf("expected empty output for nil input, got %v", urls)
	}
	if urls := u.UploadBatch(context.Background(), []string{}, "photos"); len(urls) != 0 {
		t.Fatalf("expected empty output for empty input, got %v", urls)
	}
}

func TestUploadBatch_SkipsBlankEntries(t *testing.T) {
	u := NewPhotoUploader(&stubBackend{}, zap.NewNop())
	urls := u.UploadBatch(context.Background(), []string{"aaa", "", "  ", "bbb"}, "photos")
	if len(urls) != 2 {
		t.Fatalf("expected blanks skipped, got %v", urls)
	}
}

func TestAsDataURI(t *testing.T) {
	if got := asDataURI("abc"); got != "data:image/jpeg;base64,abc" {
		t.Fatalf("bare base64 not prefixed: %s", got)
	}
	passthrough := []string{"data:image/png;base64,abc", "https://example.com/a.jpg"}
	for _, p := range passthrough {
		if got := asDataURI(p); got != p {
			t.Fatalf("expected passthrough for %s, got %s", p, got)
		}
	}
}
