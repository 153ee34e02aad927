// Package s3log reads log files stored as S3 objects. Pages are served from
// ranged GetObject calls, so only the blocks a page touches are downloaded.
package s3log

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmurray2011/leaf/internal/pager"
	"github.com/jmurray2011/leaf/internal/source"
	"github.com/jmurray2011/leaf/pkg/lru"
)

const (
	// DefaultBlockSize is the size of each ranged GetObject request.
	DefaultBlockSize = 64 * 1024

	// DefaultCacheBlocks is how many blocks one handle keeps in memory.
	DefaultCacheBlocks = 32
)

func init() {
	source.Register("s3", openSource)
}

// Source implements source.Source for a single S3 object.
type Source struct {
	client API
	bucket string
	key    string
	meta   source.Metadata

	BlockSize   int64
	CacheBlocks int
}

// openSource opens an S3 source from s3://bucket/key?profile=&region=&endpoint=.
func openSource(u *url.URL, opts source.OpenOptions) (source.Source, error) {
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3:// URI requires a bucket and key (s3://bucket/path/to/laravel.log)")
	}

	q := u.Query()
	if v := q.Get("profile"); v != "" {
		opts.Profile = v
	}
	if v := q.Get("region"); v != "" {
		opts.Region = v
	}
	if v := q.Get("endpoint"); v != "" {
		opts.Endpoint = v
	}

	client, err := newClient(context.Background(), opts)
	if err != nil {
		return nil, err
	}

	src := NewSource(client, bucket, key)
	src.meta.URI = (&url.URL{Scheme: "s3", Host: bucket, Path: "/" + key, RawQuery: u.RawQuery}).String()
	src.meta.Profile = opts.Profile
	src.meta.Region = opts.Region
	src.meta.Endpoint = opts.Endpoint
	return src, nil
}

// NewSource returns a source reading bucket/key through client.
func NewSource(client API, bucket, key string) *Source {
	return &Source{
		client: client,
		bucket: bucket,
		key:    key,
		meta: source.Metadata{
			Type: "s3",
			URI:  fmt.Sprintf("s3://%s/%s", bucket, key),
			Name: path.Base(key),
		},
		BlockSize:   DefaultBlockSize,
		CacheBlocks: DefaultCacheBlocks,
	}
}

// Open looks up the object's size and ETag. Reads through the returned
// handle are pinned to that ETag, so a replaced object fails the read
// instead of mixing two versions into one page.
func (s *Source) Open(ctx context.Context) (source.Handle, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: head s3://%s/%s: %v", pager.ErrSourceUnavailable, s.bucket, s.key, err)
	}

	blockSize := s.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	return &objectHandle{
		ctx:       ctx,
		client:    s.client,
		bucket:    s.bucket,
		key:       s.key,
		etag:      aws.ToString(head.ETag),
		size:      aws.ToInt64(head.ContentLength),
		blockSize: blockSize,
		blocks:    lru.New[int64, []byte](s.CacheBlocks),
	}, nil
}

// Type returns "s3".
func (s *Source) Type() string {
	return "s3"
}

// Metadata returns source metadata.
func (s *Source) Metadata() source.Metadata {
	return s.meta
}

// Close is a no-op; the S3 client holds no per-source resources.
func (s *Source) Close() error {
	return nil
}

// objectHandle is a block-cached io.ReaderAt over one S3 object version.
// It carries the context of the fetch it was opened for, since ReadAt has
// no context parameter of its own.
type objectHandle struct {
	ctx       context.Context
	client    API
	bucket    string
	key       string
	etag      string
	size      int64
	blockSize int64

	mu     sync.Mutex
	blocks *lru.Cache[int64, []byte]
	gets   int
}

func (h *objectHandle) Size() int64 {
	return h.size
}

func (h *objectHandle) Close() error {
	return nil
}

// ReadAt implements io.ReaderAt.
func (h *objectHandle) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("s3 read at negative offset %d", off)
	}
	if off >= h.size {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && off+int64(n) < h.size {
		pos := off + int64(n)
		idx := pos / h.blockSize
		block, err := h.block(idx)
		if err != nil {
			return n, err
		}
		n += copy(p[n:], block[pos-idx*h.blockSize:])
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// block returns block idx, downloading it on a cache miss.
func (h *objectHandle) block(idx int64) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.blocks.Get(idx); ok {
		return b, nil
	}

	start := idx * h.blockSize
	end := start + h.blockSize - 1
	if end >= h.size {
		end = h.size - 1
	}

	in := &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(h.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	}
	if h.etag != "" {
		in.IfMatch = aws.String(h.etag)
	}

	out, err := h.client.GetObject(h.ctx, in)
	h.gets++
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s %s: %w", h.bucket, h.key, aws.ToString(in.Range), err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s %s: %w", h.bucket, h.key, aws.ToString(in.Range), err)
	}
	if int64(len(data)) != end-start+1 {
		return nil, fmt.Errorf("s3://%s/%s %s: got %d bytes: %w", h.bucket, h.key, aws.ToString(in.Range), len(data), io.ErrUnexpectedEOF)
	}

	h.blocks.Add(idx, data)
	return data, nil
}
