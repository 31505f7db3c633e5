// Package arena implements the memory-mapped database file: its
// bump-allocated storage arena, the fixed header, and the linked
// chromosome/genome/bitmap catalogs that live inside it.
//
// All objects reference each other by byte offset from the start of
// the file; no absolute pointers are ever persisted. Growing the
// mapping (via Allocate) may remap the file, which invalidates any
// []byte slice obtained from a previous call -- callers must always
// resolve offsets against the arena's current view, never cache a
// slice across an Allocate call.
package arena

import (
	"os"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/tjkurowski/tersect-go/internal/tsterr"
)

const (
	growthHeadroom = 1.5  // grow the mapping to 1.5x the bytes needed
	initialSize    = 1 << 20
	nameCacheSize  = 4096
)

// Arena is a memory-mapped, append-only database file. It is safe for
// concurrent readers once Close has been called by the writer that
// built it; it is never safe for concurrent writers.
type Arena struct {
	path     string
	data     []byte
	readOnly bool

	// nameCache maps a genome name to its catalog offset. It is a
	// process-local convenience, never persisted, as invited by
	// spec §9 ("add a name→offset index as an internal cache").
	nameCache *lru.Cache[string, uint64]

	// internTable maps an interned "REF\tALT" payload to the offset
	// of its one stored copy, maintained only while a writer is
	// actively ingesting.
	internTable map[string]uint64
}

func pageSize() uint64 { return uint64(os.Getpagesize()) }

func roundToPage(n uint64) uint64 {
	ps := pageSize()
	return (n + ps - 1) / ps * ps
}

// Create makes a new database file at path. If force is false and the
// file already exists, Create fails with a BuildExists error.
func Create(path string, force bool) (*Arena, error) {
	flags := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, tsterr.Wrap(tsterr.BuildExists, path, err)
		}
		return nil, tsterr.Wrap(tsterr.BuildCreate, path, err)
	}
	size := roundToPage(initialSize)
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, tsterr.Wrap(tsterr.BuildCreate, path, err)
	}
	f.Close()

	a := &Arena{path: path, internTable: map[string]uint64{}}
	cache, _ := lru.New[string, uint64](nameCacheSize)
	a.nameCache = cache
	if err := a.mmap(size, false); err != nil {
		return nil, err
	}
	h := &header{dbSize: size, wordSize: wordSizeBits, freeHead: HeaderSize}
	h.encode(a.data)
	return a, nil
}

// Open maps an existing database file for reading (or read-write, for
// a build session continuing to append).
func Open(path string) (*Arena, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tsterr.Wrap(tsterr.DbMissing, path, err)
		}
		return nil, tsterr.Wrap(tsterr.DbOpenFailed, path, err)
	}
	if fi.Size() < HeaderSize {
		return nil, tsterr.New(tsterr.DbOpenFailed, path+": file too small to contain a header")
	}
	a := &Arena{path: path, internTable: map[string]uint64{}}
	cache, _ := lru.New[string, uint64](nameCacheSize)
	a.nameCache = cache
	if err := a.mmap(uint64(fi.Size()), false); err != nil {
		return nil, err
	}
	h, ok := decodeHeader(a.data)
	if !ok {
		a.unmap()
		return nil, tsterr.New(tsterr.DbOpenFailed, path+": bad magic")
	}
	if h.wordSize != wordSizeBits {
		a.unmap()
		return nil, tsterr.New(tsterr.DbOpenFailed, path+": word size mismatch")
	}
	return a, nil
}

func (a *Arena) mmap(size uint64, readOnly bool) error {
	f, err := os.OpenFile(a.path, os.O_RDWR, 0644)
	if err != nil {
		return tsterr.Wrap(tsterr.DbOpenFailed, a.path, err)
	}
	defer f.Close() // the mapping, not the fd, holds the reference

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return tsterr.Wrap(tsterr.Alloc, "mmap", err)
	}
	a.data = data
	a.readOnly = readOnly
	return nil
}

func (a *Arena) unmap() {
	if a.data != nil {
		unix.Munmap(a.data)
		a.data = nil
	}
}

// Close flushes and unmaps the database. After Close, the Arena must
// not be used.
func (a *Arena) Close() error {
	if a.data == nil {
		return nil
	}
	if err := unix.Msync(a.data, unix.MS_SYNC); err != nil {
		a.unmap()
		return errors.Wrap(err, "msync")
	}
	a.unmap()
	return nil
}

func (a *Arena) header() *header {
	h, _ := decodeHeader(a.data)
	return h
}

func (a *Arena) writeHeader(h *header) { h.encode(a.data) }

// grow extends the mapping so that at least extra additional bytes of
// free space exist beyond freeHead. It remaps the file, invalidating
// any slice callers obtained from the arena before this call.
func (a *Arena) grow(extra uint64) error {
	h := a.header()
	needed := h.freeHead + extra
	if needed <= h.dbSize {
		return nil
	}
	newSize := roundToPage(uint64(float64(needed) * growthHeadroom))

	if err := unix.Msync(a.data, unix.MS_SYNC); err != nil {
		return errors.Wrap(err, "msync before grow")
	}
	a.unmap()

	f, err := os.OpenFile(a.path, os.O_RDWR, 0644)
	if err != nil {
		return tsterr.Wrap(tsterr.Alloc, a.path, err)
	}
	if err := f.Truncate(int64(newSize)); err != nil {
		f.Close()
		return tsterr.Wrap(tsterr.Alloc, a.path, err)
	}
	f.Close()

	if err := a.mmap(newSize, false); err != nil {
		return err
	}
	h = a.header()
	h.dbSize = newSize
	a.writeHeader(h)
	return nil
}

// Allocate bump-allocates n bytes and returns the offset at which they
// start. It may grow (and thus remap) the underlying file.
func (a *Arena) Allocate(n uint64) (uint64, error) {
	if err := a.grow(n); err != nil {
		return 0, err
	}
	h := a.header()
	off := h.freeHead
	h.freeHead += n
	a.writeHeader(h)
	return off, nil
}

// Bytes returns the live, current backing slice. Never retain this
// across a call to Allocate.
func (a *Arena) Bytes() []byte { return a.data }

// FreeHead returns the current bump-allocator cursor.
func (a *Arena) FreeHead() uint64 { return a.header().freeHead }

// Path returns the filesystem path this arena is mapped from.
func (a *Arena) Path() string { return a.path }
