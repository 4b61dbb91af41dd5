package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"lowerc/internal/diag"
	"lowerc/internal/enums"
	"lowerc/internal/types"
)

// Increment when DiskPayload or the key encoding changes.
const diskCacheSchemaVersion uint16 = 1

// Digest is a sha256 cache key.
type Digest [sha256.Size]byte

// DiskCache keeps classification outcomes keyed by a digest of the enum
// declaration. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is a cached classification outcome.
type DiskPayload struct {
	Schema uint16

	Enum      string
	Rep       uint8
	Kind      uint8
	Namespace string
	Constants []string
	Member    string

	// ErrCode is set when the enum was excluded.
	ErrCode   diag.Code
	ErrDetail string

	Diagnostics []diag.Diagnostic
}

// OpenDiskCache returns a cache under $XDG_CACHE_HOME/app, or
// ~/.cache/app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache returns a cache rooted at dir.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "enums", hex.EncodeToString(key[:])+".mp")
}

// Put writes payload atomically.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload for key. A payload from another schema is a miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "enums"))
}

// cacheKey is what a classification outcome depends on. Member types are
// spelled out since TypeIDs differ between runs.
type cacheKey struct {
	Schema         uint16
	Name           string
	File           string
	Native         bool
	Namespace      string
	JSName         string
	HasCustomValue bool
	Constants      []string
	Members        []cacheMember
}

type cacheMember struct {
	Name        string
	Type        string
	Kind        uint8
	Static      bool
	CustomValue bool
}

func enumDigest(in *types.Interner, d enums.Decl) (Digest, error) {
	k := cacheKey{
		Schema:         diskCacheSchemaVersion,
		Name:           d.Name,
		File:           d.File,
		Native:         d.Native,
		Namespace:      d.Namespace,
		JSName:         d.JSName,
		HasCustomValue: d.HasCustomValue,
		Constants:      d.Constants,
	}
	for _, m := range d.Members {
		t, _ := in.Lookup(m.Type)
		k.Members = append(k.Members, cacheMember{
			Name:        m.Name,
			Type:        in.Describe(m.Type),
			Kind:        uint8(t.Kind),
			Static:      m.Static,
			CustomValue: m.CustomValue,
		})
	}
	data, err := msgpack.Marshal(&k)
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(data), nil
}

func payloadOf(name string, out enums.Outcome) *DiskPayload {
	p := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Enum:        name,
		Diagnostics: out.Diagnostics,
	}
	if out.Err != nil {
		p.ErrCode = out.Err.Code
		p.ErrDetail = out.Err.Detail
		return p
	}
	p.Rep = uint8(out.Info.Variant.Rep)
	p.Kind = uint8(out.Info.Variant.Kind)
	p.Namespace = out.Info.Namespace
	p.Constants = out.Info.Constants
	p.Member = out.Info.Member
	return p
}

// outcome rebuilds the classification result. ok is false when the payload
// does not describe a valid outcome.
func (p *DiskPayload) outcome() (enums.Outcome, bool) {
	out := enums.Outcome{Diagnostics: p.Diagnostics}
	if p.ErrCode != diag.UnknownCode {
		sentinel := enums.Sentinel(p.ErrCode)
		if sentinel == nil {
			return enums.Outcome{}, false
		}
		out.Err = &enums.Error{Enum: p.Enum, Code: p.ErrCode, Err: sentinel, Detail: p.ErrDetail}
		return out, true
	}
	out.Info = types.EnumInfo{
		Variant:   types.EnumVariant{Rep: types.Representation(p.Rep), Kind: types.ValueKind(p.Kind)},
		Namespace: p.Namespace,
		Constants: p.Constants,
		Member:    p.Member,
	}
	return out, out.Info.Variant.Valid()
}
