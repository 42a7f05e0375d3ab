package rawstore

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

const recordExt = ".json.gz"

// Store persists raw records under root/raw/{service}/{region}/{operation}.json.gz.
// Writes are atomic (temp file + rename): readers never observe a partial
// record. Re-collecting a key overwrites the prior record.
type Store struct {
	root  string
	locks sync.Map // record path -> *sync.Mutex
}

// NewStore creates the raw directory if needed.
func NewStore(runDir string) (*Store, error) {
	root := filepath.Join(runDir, "raw")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create raw store at %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Root returns the raw directory path.
func (s *Store) Root() string { return s.root }

// Put writes one record. Writes to the same key serialize; distinct keys
// proceed concurrently.
func (s *Store) Put(rec domain.RawRecord) error {
	m := rec.Metadata
	if m.Service == "" || m.Region == "" || m.Operation == "" {
		return fmt.Errorf("raw record missing key fields: %+v", m)
	}

	dir := filepath.Join(s.root, m.Service, m.Region)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, m.Operation+recordExt)

	lock, _ := s.locks.LoadOrStore(path, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	tmp, err := os.CreateTemp(dir, m.Operation+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp record: %w", err)
	}
	defer os.Remove(tmp.Name())

	gz := gzip.NewWriter(tmp)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode record %s: %w", path, err)
	}
	if err := gz.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush record %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp record: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to persist record %s: %w", path, err)
	}
	return nil
}

// Filter restricts iteration. Empty fields match everything.
type Filter struct {
	Service string
	Region  string
}

// Walk streams records lazily through fn in path order. An unreadable
// record aborts the walk with its error; fn returning an error stops
// early.
func (s *Store) Walk(filter Filter, fn func(domain.RawRecord) error) error {
	services, err := readDirNames(s.root)
	if err != nil {
		return err
	}
	for _, service := range services {
		if filter.Service != "" && filter.Service != service {
			continue
		}
		regions, err := readDirNames(filepath.Join(s.root, service))
		if err != nil {
			return err
		}
		for _, region := range regions {
			if filter.Region != "" && filter.Region != region {
				continue
			}
			dir := filepath.Join(s.root, service, region)
			entries, err := os.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", dir, err)
			}
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
					continue
				}
				rec, err := readRecord(filepath.Join(dir, entry.Name()))
				if err != nil {
					return err
				}
				if err := fn(rec); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func readRecord(path string) (domain.RawRecord, error) {
	var rec domain.RawRecord

	f, err := os.Open(path)
	if err != nil {
		return rec, fmt.Errorf("failed to open record %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return rec, fmt.Errorf("failed to read record %s: %w", path, err)
	}
	defer gz.Close()

	if err := json.NewDecoder(gz).Decode(&rec); err != nil {
		return rec, fmt.Errorf("failed to decode record %s: %w", path, err)
	}
	return rec, nil
}
