// Package archive is a badger-backed mapping genome -> topology name
// (§6.3), grounded directly on lib2x3/catalog/catalog.go -- a badger-
// backed catalog of canonical graph encodings keyed by signature. We keep
// that shape: a *badger.DB wrapper, explicit Options (no ReadOnly-by-
// default surprises), and a state record gating incompatible versions.
package archive

import (
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Version is the generator version stamped into every archive this
// package writes, and checked against on import (§6's "Made by <tool>
// v<X.Y.Z>" header, §7's ArchiveVersionMismatch).
const Version = "0.1.0"

// ErrVersionMismatch implements §7's ArchiveVersionMismatch error kind.
var ErrVersionMismatch = errors.New("archive: generator version mismatch")

// ErrNotFound is returned by Lookup when no entry matches a key.
var ErrNotFound = errors.New("archive: genome not found")

// Options configures Open.
type Options struct {
	// Path is the badger data directory. Empty means an in-memory store
	// (badger.DefaultOptions("").WithInMemory(true)), used by tests and by
	// ephemeral single-shot CLI analyse runs.
	Path string
	// ReadOnly opens the store without write access.
	ReadOnly bool
	// IgnoreVersion skips the version gate on ImportText (the --force
	// equivalent named in §7).
	IgnoreVersion bool
}

// Archive wraps a *badger.DB mapping a genome string to a topology name.
type Archive struct {
	db   *badger.DB
	opts Options
}

// Open opens (or creates) an archive at opts.Path, or an in-memory store if
// opts.Path is empty.
func Open(opts Options) (*Archive, error) {
	var dbOpts badger.Options
	if opts.Path == "" {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dbOpts = badger.DefaultOptions(opts.Path)
	}
	dbOpts = dbOpts.WithReadOnly(opts.ReadOnly).WithLogger(nil)

	db, err := badger.Open(dbOpts)
	if err != nil {
		klog.Errorf("archive: failed to open %q: %v", opts.Path, err)
		return nil, errors.Wrap(err, "archive: open failed")
	}
	klog.V(1).Infof("archive: opened %q (read-only=%v)", opts.Path, opts.ReadOnly)
	return &Archive{db: db, opts: opts}, nil
}

// Close releases the underlying badger store.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Lookup returns the topology name(s) registered for genome key, joined by
// ", " if more than one name was ever merged under that key (§6's
// duplicate-key merge rule), or ErrNotFound.
func (a *Archive) Lookup(key string) (string, error) {
	var name string
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// Put registers name under genome key, merging with any existing name(s)
// via mergeNames (duplicate keys across a directory archive are
// concatenated with ", " exactly as §6 specifies).
func (a *Archive) Put(key, name string) error {
	return a.db.Update(func(txn *badger.Txn) error {
		existing := ""
		item, err := txn.Get([]byte(key))
		if err == nil {
			if verr := item.Value(func(val []byte) error {
				existing = string(val)
				return nil
			}); verr != nil {
				return verr
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		merged := mergeNames(existing, name)
		return txn.Set([]byte(key), []byte(merged))
	})
}

// Delete removes the entry for key, if any.
func (a *Archive) Delete(key string) error {
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// mergeNames concatenates name into existing, de-duplicating and joining
// with ", " per §6.
func mergeNames(existing, name string) string {
	if existing == "" {
		return name
	}
	for _, n := range strings.Split(existing, ", ") {
		if n == name {
			return existing
		}
	}
	return existing + ", " + name
}

// NumGenomes reports how many distinct genomes of exactly forVertexCount
// vertices are registered -- a supplemented query (SPEC_FULL.md §9.4)
// mirroring the teacher's Catalog.NumTraces/NumPrimes counters.
func (a *Archive) NumGenomes(forVertexCount int) (int64, error) {
	var count int64
	prefix := []byte{}
	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			if keyVertexCount(key) == forVertexCount {
				count++
			}
		}
		return nil
	})
	return count, err
}

// keyVertexCount returns the largest vertex id named by any edge tuple of a
// genome string (its vertex count), or 0 if key has no edges.
func keyVertexCount(key string) int {
	fields := strings.Fields(key)
	max := 0
	for i := 1; i+1 < len(fields); i += 5 {
		for _, f := range fields[i : i+2] {
			n := atoiOrZero(f)
			if n > max {
				max = n
			}
		}
	}
	return max
}

func atoiOrZero(s string) int {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		return -n
	}
	return n
}

// OnHit is called by Select for each registered (key, name) pair.
type OnHit func(key, name string) bool

// Select streams every archive entry whose encoded vertex count falls in
// [minV, maxV] to onHit, stopping early if onHit returns false -- a
// supplemented query (SPEC_FULL.md §9.4) mirroring the teacher's
// Catalog.Select(sel GraphSelector, onHit OnGraphHit).
func (a *Archive) Select(minV, maxV int, onHit OnHit) error {
	return a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			nv := keyVertexCount(key)
			if nv < minV || nv > maxV {
				continue
			}
			var name string
			if err := item.Value(func(val []byte) error {
				name = string(val)
				return nil
			}); err != nil {
				return err
			}
			if !onHit(key, name) {
				return nil
			}
		}
		return nil
	})
}
