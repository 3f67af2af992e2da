package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"google.golang.org/api/iterator"
)

// GCSStore writes snapshots to a local DirStore and uploads them to a Cloud
// Storage bucket under Prefix. Latest downloads the highest step into the
// local directory before decoding it.
type GCSStore struct {
	Bucket string
	Prefix string
	Local  *DirStore
}

var _ Store = (*GCSStore)(nil)

func (g *GCSStore) objectKey(step int) string {
	return path.Join(g.Prefix, FileName(step))
}

func (g *GCSStore) url(key string) string {
	return "gs://" + g.Bucket + "/" + key
}

// Save stores the snapshot locally and uploads it.
func (g *GCSStore) Save(ctx context.Context, s *Snapshot) error {
	log := ctxlog.FromContext(ctx)

	if err := g.Local.Save(ctx, s); err != nil {
		return err
	}

	src, err := os.Open(g.Local.Path(s.Step))
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	key := g.objectKey(s.Step)
	startedAt := time.Now()
	w := client.Bucket(g.Bucket).Object(key).NewWriter(ctx)
	n, err := io.Copy(w, src)
	if err != nil {
		w.Close()
		return fmt.Errorf("uploading to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing GCS writer: %w", err)
	}

	log.Info("Uploaded checkpoint to GCS.", "url", g.url(key), "bytes", n, "duration", time.Since(startedAt))
	return nil
}

// Latest finds the highest step in the bucket, downloads it and decodes it.
func (g *GCSStore) Latest(ctx context.Context) (*Snapshot, error) {
	log := ctxlog.FromContext(ctx)

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	bucket := client.Bucket(g.Bucket)
	query := &storage.Query{Prefix: g.Prefix}
	latest := -1
	it := bucket.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", g.url(g.Prefix), err)
		}
		if step, ok := StepOf(path.Base(attrs.Name)); ok && step > latest {
			latest = step
		}
	}
	if latest < 0 {
		return nil, ErrNotFound
	}

	key := g.objectKey(latest)
	r, err := bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening object from GCS %q: %w", g.url(key), err)
	}
	defer r.Close()

	if err := os.MkdirAll(g.Local.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}
	dest := g.Local.Path(latest)
	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("creating %q: %w", dest, err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("downloading from GCS: %w", err)
	}
	log.Info("Downloaded checkpoint from GCS.", "url", g.url(key), "bytes", n)

	return g.Local.Load(ctx, latest)
}

// NewStore returns a GCSStore when bucket is set and a DirStore otherwise.
func NewStore(dir, bucket, prefix string) Store {
	local := &DirStore{Dir: dir}
	if bucket == "" {
		return local
	}
	return &GCSStore{Bucket: bucket, Prefix: prefix, Local: local}
}
