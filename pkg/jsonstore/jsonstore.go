// Package jsonstore persists application resources as flat JSON files.
//
// Each resource ("users", "orders", "messages") lives in a single
// <name>.json file under the data directory. Files are re-read on every
// access and rewritten whole on every change, so operators can inspect or
// edit the files between requests.
//
// Usage:
//
//	jsonstore.Connect("data")
//
//	var users []models.User
//	err := jsonstore.Mutate("users", func() error {
//	    if err := jsonstore.Load("users", &users); err != nil && !errors.Is(err, jsonstore.ErrCorrupt) {
//	        return err
//	    }
//	    users = append(users, u)
//	    return jsonstore.Save("users", users)
//	})
//
// Mutate serializes read-modify-write cycles per resource, so two
// concurrent registrations cannot drop each other's rows.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shashiranjanraj/orderdesk/config"
	"github.com/shashiranjanraj/orderdesk/pkg/logger"
	"github.com/shashiranjanraj/orderdesk/pkg/metrics"
	"github.com/shashiranjanraj/orderdesk/pkg/storage"
	"github.com/shashiranjanraj/orderdesk/pkg/workerpool"
)

// ErrCorrupt is returned by Load when a resource file exists but does not
// parse as JSON. The file is left untouched so the operator can repair it;
// dest keeps whatever default the caller passed in.
var ErrCorrupt = errors.New("jsonstore: resource file is corrupt")

var (
	mu     sync.Mutex
	dir    string
	locks  = map[string]*sync.Mutex{}
	mirror *workerpool.Pool
)

// Connect boots the store rooted at dataDir, creating the directory if
// needed. Call once at application startup.
func Connect(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("jsonstore: mkdir %s: %w", dataDir, err)
	}

	mu.Lock()
	dir = dataDir
	if mirror == nil && config.BackupDisk() != "" {
		mirror = workerpool.New(2)
	}
	mu.Unlock()
	return nil
}

// Close drains the backup mirror pool. Safe to call when backups are off.
func Close() {
	mu.Lock()
	p := mirror
	mirror = nil
	mu.Unlock()
	if p != nil {
		p.Shutdown()
	}
}

func path(name string) string {
	mu.Lock()
	defer mu.Unlock()
	return filepath.Join(dir, name+".json")
}

func lockFor(name string) *sync.Mutex {
	mu.Lock()
	defer mu.Unlock()
	l, ok := locks[name]
	if !ok {
		l = &sync.Mutex{}
		locks[name] = l
	}
	return l
}

// Mutate runs fn while holding the per-resource lock for name. All
// read-modify-write cycles against a resource must go through Mutate.
func Mutate(name string, fn func() error) error {
	l := lockFor(name)
	l.Lock()
	defer l.Unlock()
	return fn()
}

// Load reads <name>.json into dest.
//
// A missing file is created on the spot holding dest's current value, so
// first boot materializes the empty resource files. A file that exists but
// fails to parse returns ErrCorrupt and leaves both the file and dest
// untouched.
func Load(name string, dest interface{}) error {
	p := path(name)

	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		metrics.StoreReads.WithLabelValues(name, "missing").Inc()
		return Save(name, dest)
	}
	if err != nil {
		metrics.StoreReads.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("jsonstore: read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		metrics.StoreReads.WithLabelValues(name, "corrupt").Inc()
		logger.Error("jsonstore: corrupt resource file", "resource", name, "path", p, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}

	metrics.StoreReads.WithLabelValues(name, "ok").Inc()
	return nil
}

// Save writes v to <name>.json atomically (temp file + rename). Output is
// two-space indented with HTML escaping off, matching what a human would
// write by hand.
func Save(name string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		metrics.StoreWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("jsonstore: encode %s: %w", name, err)
	}

	p := path(name)
	tmp, err := os.CreateTemp(filepath.Dir(p), name+"-*.json.tmp")
	if err != nil {
		metrics.StoreWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("jsonstore: temp file for %s: %w", name, err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		metrics.StoreWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("jsonstore: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		metrics.StoreWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("jsonstore: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		metrics.StoreWrites.WithLabelValues(name, "error").Inc()
		return fmt.Errorf("jsonstore: rename %s: %w", name, err)
	}

	metrics.StoreWrites.WithLabelValues(name, "ok").Inc()
	mirrorAsync(name, buf.Bytes())
	return nil
}

// mirrorAsync ships a copy of the freshly written file to the backup disk.
// Backpressure drops the task; the next write mirrors the latest state
// anyway.
func mirrorAsync(name string, data []byte) {
	mu.Lock()
	p := mirror
	mu.Unlock()
	if p == nil {
		return
	}

	err := p.Submit(func() {
		if err := storage.Put(name+".json", data); err != nil {
			metrics.BackupJobs.WithLabelValues("failed").Inc()
			logger.Warn("jsonstore: backup mirror failed", "resource", name, "error", err)
			return
		}
		metrics.BackupJobs.WithLabelValues("success").Inc()
	})
	if err != nil {
		metrics.BackupJobs.WithLabelValues("dropped").Inc()
	}
}

// Restore copies a resource file back from the backup disk into the data
// directory. Used by the restore CLI command.
func Restore(name string) error {
	data, err := storage.Get(name + ".json")
	if err != nil {
		return fmt.Errorf("jsonstore: restore %s: %w", name, err)
	}
	if err := os.WriteFile(path(name), data, 0o644); err != nil {
		return fmt.Errorf("jsonstore: restore write %s: %w", name, err)
	}
	return nil
}
