package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/assetsync/internal/core/domain"
	"github.com/custodia-labs/assetsync/internal/core/ports/driven"
	"github.com/custodia-labs/assetsync/internal/core/ports/driving"
)

// --- Mock implementations shared by the pipeline tests ---

// mockDownloader writes a fixed payload to the destination and counts calls per URL.
type mockDownloader struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]error
	payload []byte
}

func newMockDownloader() *mockDownloader {
	return &mockDownloader{
		calls:   make(map[string]int),
		fail:    make(map[string]error),
		payload: []byte("bundle"),
	}
}

func (d *mockDownloader) Download(_ context.Context, url, dst string) (int64, error) {
	d.mu.Lock()
	d.calls[url]++
	err := d.fail[url]
	d.mu.Unlock()
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(dst, d.payload, 0o600); err != nil {
		return 0, err
	}
	return int64(len(d.payload)), nil
}

func (d *mockDownloader) total() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		n += c
	}
	return n
}

func (d *mockDownloader) failURL(url string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[url] = err
}

// fsCache checks the real filesystem; the digest is the file content itself.
type fsCache struct{}

func (fsCache) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (fsCache) Digest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", data), nil
}

// recordingWriter keeps artifacts and raw copies in memory.
type recordingWriter struct {
	mu        sync.Mutex
	artifacts []domain.Artifact
	raw       map[string]string
	failPath  string
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{raw: make(map[string]string)}
}

func (w *recordingWriter) Write(_ context.Context, a domain.Artifact) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if a.Path == w.failPath {
		return "", errors.New("disk full")
	}
	w.artifacts = append(w.artifacts, a)
	return a.Path, nil
}

func (w *recordingWriter) CopyRaw(_ context.Context, src, rel string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.raw[rel] = src
	return rel, nil
}

func (w *recordingWriter) paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.artifacts))
	for i, a := range w.artifacts {
		out[i] = a.Path
	}
	return out
}

// fakeObject is a decoded object with canned fields.
type fakeObject struct {
	tag    domain.TypeTag
	id     int64
	fields domain.Fields
	err    error
}

func (o *fakeObject) TypeTag() domain.TypeTag      { return o.tag }
func (o *fakeObject) PathID() int64                { return o.id }
func (o *fakeObject) Read() (domain.Fields, error) { return o.fields, o.err }

func texture(id int64, name string) *fakeObject {
	return &fakeObject{
		tag:    domain.TypeTexture2D,
		id:     id,
		fields: domain.TextureFields{Name: name, Image: image.NewNRGBA(image.Rect(0, 0, 2, 2))},
	}
}

// fakeDecoder decodes by file path. Files it does not know decode to one
// texture each, numbered in file order.
type fakeDecoder struct {
	mu      sync.Mutex
	objects map[string][]domain.DecodedObject
	fail    map[string]error
	calls   [][]string
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{
		objects: make(map[string][]domain.DecodedObject),
		fail:    make(map[string]error),
	}
}

func (d *fakeDecoder) Decode(_ context.Context, files []string) ([]domain.DecodedObject, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, files)

	var out []domain.DecodedObject
	for i, f := range files {
		if err := d.fail[f]; err != nil {
			return nil, err
		}
		if objs, ok := d.objects[f]; ok {
			out = append(out, objs...)
			continue
		}
		out = append(out, texture(int64(i+1), filepath.Base(f)))
	}
	return out, nil
}

// fakeReconstructor records the objects it was given.
type fakeReconstructor struct {
	tag      domain.TypeTag
	priority int
	fn       func(obj domain.DecodedObject, rc *driven.ReconstructContext) ([]domain.Artifact, error)

	log *callLog
}

// callLog records reconstruct calls across reconstructors in call order.
type callLog struct {
	mu  sync.Mutex
	ids []int64
}

func (l *callLog) add(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, id)
}

func (l *callLog) list() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int64(nil), l.ids...)
}

func (r *fakeReconstructor) TypeTag() domain.TypeTag { return r.tag }
func (r *fakeReconstructor) Priority() int           { return r.priority }

func (r *fakeReconstructor) Reconstruct(_ context.Context, obj domain.DecodedObject, rc *driven.ReconstructContext) ([]domain.Artifact, error) {
	if r.log != nil {
		r.log.add(obj.PathID())
	}
	if r.fn != nil {
		return r.fn(obj, rc)
	}
	return []domain.Artifact{
		domain.NewImage(fmt.Sprintf("%s/%d", rc.Destination, obj.PathID()), image.NewNRGBA(image.Rect(0, 0, 1, 1)), obj.PathID()),
	}, nil
}

type fakeRegistry map[domain.TypeTag]driven.Reconstructor

func (r fakeRegistry) Lookup(tag domain.TypeTag) (driven.Reconstructor, bool) {
	rec, ok := r[tag]
	return rec, ok
}

// fakeSyncOrchestrator counts Sync calls for watcher tests.
type fakeSyncOrchestrator struct {
	mu    sync.Mutex
	syncs int
	err   error
}

func (f *fakeSyncOrchestrator) Sync(_ context.Context, region string, _ driving.SyncOptions) (*domain.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RunSummary{Region: region}, nil
}

func (f *fakeSyncOrchestrator) SyncAll(ctx context.Context, opts driving.SyncOptions) ([]*domain.RunSummary, error) {
	s, err := f.Sync(ctx, "", opts)
	return []*domain.RunSummary{s}, err
}

func (f *fakeSyncOrchestrator) Subscribe(func(domain.ProgressEvent)) func() { return func() {} }

func (f *fakeSyncOrchestrator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs
}

// fakeNotifier hands out a channel the test drives.
type fakeNotifier struct {
	ch  chan struct{}
	err error
}

func (n *fakeNotifier) Watch(_ context.Context, _ string) (<-chan struct{}, error) {
	if n.err != nil {
		return nil, n.err
	}
	return n.ch, nil
}
