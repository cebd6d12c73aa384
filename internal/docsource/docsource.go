// Package docsource resolves statement documents from the local filesystem
// or Google Cloud Storage into extractable pages.
package docsource

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/madhu-yavar/table-extraction/internal/document"
)

// Local is a statement PDF on disk.
type Local struct {
	Path string
}

func (l Local) Name() string {
	return filepath.Base(l.Path)
}

func (l Local) Pages(context.Context) (*document.Pages, error) {
	return document.ExtractPages(l.Path)
}

// GCSObject is a statement PDF in a Cloud Storage bucket. The storage client
// is created per fetch; sources are cheap values, not held connections.
type GCSObject struct {
	Bucket string
	Object string
}

func (o GCSObject) Name() string {
	return path.Base(o.Object)
}

func (o GCSObject) Pages(ctx context.Context) (*document.Pages, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(o.Bucket).Object(o.Object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", o.Bucket, o.Object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", o.Bucket, o.Object, err)
	}

	return document.ExtractPagesFromBytes(o.Name(), data)
}

// ParseGCSURI splits a gs://bucket/object URI.
func ParseGCSURI(uri string) (GCSObject, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return GCSObject{}, fmt.Errorf("not a gs:// URI: %q", uri)
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return GCSObject{}, fmt.Errorf("malformed gs:// URI: %q", uri)
	}
	return GCSObject{Bucket: bucket, Object: object}, nil
}

// ListGCSPrefix enumerates the PDF objects under a bucket prefix, sorted by
// object name.
func ListGCSPrefix(ctx context.Context, bucket, prefix string) ([]GCSObject, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	var objects []GCSObject
	it := client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", bucket, prefix, err)
		}
		if !strings.EqualFold(path.Ext(attrs.Name), ".pdf") {
			continue
		}
		objects = append(objects, GCSObject{Bucket: bucket, Object: attrs.Name})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Object < objects[j].Object })
	return objects, nil
}

// ListLocalDir enumerates the PDF files directly inside a directory, sorted
// by name.
func ListLocalDir(dir string) ([]Local, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []Local
	for _, m := range matches {
		if strings.EqualFold(filepath.Ext(m), ".pdf") {
			files = append(files, Local{Path: m})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
