package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// FileCache stores entries as zstd-compressed files under a directory.
// SVG and JSON output compresses roughly tenfold, which keeps a cache of
// many seeds small.
type FileCache struct {
	dir string
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewFileCache creates a file-based cache in dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &FileCache{dir: dir, enc: enc, dec: dec}, nil
}

// An entry file is the zstd frame of an 8-byte big-endian expiry in Unix
// nanoseconds (0 for none) followed by the payload.
const headerLen = 8

// Get retrieves a value. Corrupt or expired entries are removed and
// reported as a miss.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	plain, err := c.dec.DecodeAll(raw, nil)
	if err != nil || len(plain) < headerLen {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if exp := int64(binary.BigEndian.Uint64(plain)); exp != 0 && time.Now().UnixNano() > exp {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return plain[headerLen:], true, nil
}

// Set stores a value. The file is written under a temporary name and
// renamed, so a concurrent Get never reads a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	plain := make([]byte, headerLen, headerLen+len(data))
	if ttl > 0 {
		binary.BigEndian.PutUint64(plain, uint64(time.Now().Add(ttl).UnixNano()))
	}
	plain = append(plain, data...)

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".entry-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(c.enc.EncodeAll(plain, nil))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close releases the zstd encoder and decoder.
func (c *FileCache) Close() error {
	c.dec.Close()
	return c.enc.Close()
}

func (c *FileCache) Dir() string { return c.dir }

// path shards entries into 256 directories named by the first hash byte.
func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".zst")
}

var _ Cache = (*FileCache)(nil)
