package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hupe1980/hfabric/blobstore"
	"github.com/hupe1980/hfabric/internal/resource"
	"github.com/hupe1980/hfabric/manifest"
	"golang.org/x/sync/errgroup"
)

// Options configures Publish.
type Options struct {
	// Registry, if set, is asked to bind the version before any upload.
	Registry Registry

	// Resources bounds upload concurrency and throughput. nil means one
	// upload at a time without a rate limit.
	Resources *resource.Controller

	// Logger receives progress messages. nil disables logging.
	Logger *slog.Logger
}

// Result reports what was published.
type Result struct {
	Name    string
	Version string
	Digest  string
	Files   int
	Bytes   int64
}

// Publish uploads the package in localDir to dst.
func Publish(ctx context.Context, localDir string, dst blobstore.BlobStore, opts Options) (*Result, error) {
	src := blobstore.NewLocalStore(localDir)
	m, err := manifest.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("publish %s: %w", localDir, err)
	}
	digest := m.Digest()
	if m.ContentDigest != "" && m.ContentDigest != digest {
		return nil, fmt.Errorf("publish %s: %w: content digest mismatch", localDir, manifest.ErrInvalid)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.Registry != nil {
		if err := opts.Registry.Register(ctx, m.Name, m.Version, digest); err != nil {
			return nil, err
		}
	}

	res := &Result{Name: m.Name, Version: m.Version, Digest: digest}
	entries := m.Entries()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Resources.MaxWorkers())
	sizes := make([]int64, len(entries))
	for i, e := range entries {
		g.Go(func() error {
			n, err := upload(gctx, localDir, e.File, dst, opts.Resources)
			if err != nil {
				return fmt.Errorf("upload %s: %w", e.File, err)
			}
			sizes[i] = n
			logger.DebugContext(gctx, "uploaded", "file", e.File, "bytes", n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, n := range sizes {
		res.Bytes += n
	}

	n, err := upload(ctx, localDir, manifest.FileName, dst, opts.Resources)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", manifest.FileName, err)
	}
	res.Bytes += n
	res.Files = len(entries) + 1

	logger.InfoContext(ctx, "package published", "name", m.Name, "version", m.Version, "files", res.Files, "bytes", res.Bytes)
	return res, nil
}

func upload(ctx context.Context, dir, name string, dst blobstore.BlobStore, rc *resource.Controller) (int64, error) {
	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w, err := dst.Create(ctx, name)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(w, resource.NewRateLimitedReader(ctx, f, rc))
	if err != nil {
		_ = w.Close()
		return n, err
	}
	if err := w.Sync(); err != nil {
		_ = w.Close()
		return n, err
	}
	return n, w.Close()
}

// Verify checks that every file of the published package exists in store
// with the size recorded locally.
func Verify(ctx context.Context, localDir string, store blobstore.BlobStore) error {
	m, err := manifest.Load(ctx, store)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range m.Entries() {
		st, err := os.Stat(filepath.Join(localDir, filepath.FromSlash(e.File)))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b, err := store.Open(ctx, e.File)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if b.Size() != st.Size() {
			errs = append(errs, fmt.Errorf("%s: remote size %d, local %d", e.File, b.Size(), st.Size()))
		}
		_ = b.Close()
	}
	return errors.Join(errs...)
}
