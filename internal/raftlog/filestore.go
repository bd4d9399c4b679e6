package raftlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/raftsql/raftsql/internal/log"
)

// FileStore wraps MemStore with on-disk persistence, grounded on the
// teacher's term-file/log-file split (internal/node/node.go's WriteTerm/
// ReadTerm/WriteLogs/ReadLogs) but using JSON instead of protobuf, since no
// protoc-generated wire types are available here (see DESIGN.md).
type FileStore struct {
	mu       sync.Mutex
	mem      *MemStore
	termFile string
	logFile  string
}

type fileMeta struct {
	Term     uint64 `json:"term"`
	VotedFor string `json:"voted_for"`
}

// OpenFileStore loads persisted state from dataDir (creating it if absent)
// and returns a FileStore ready for use.
func OpenFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("raftlog: create data dir: %w", err)
	}
	fs := &FileStore{
		mem:      NewMemStore(),
		termFile: filepath.Join(dataDir, "term.json"),
		logFile:  filepath.Join(dataDir, "log.json"),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	if raw, err := os.ReadFile(fs.termFile); err == nil {
		var m fileMeta
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("raftlog: unmarshal term file: %w", err)
		}
		if err := fs.mem.StoreMeta(m.Term, m.VotedFor); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("raftlog: read term file: %w", err)
	}

	if raw, err := os.ReadFile(fs.logFile); err == nil {
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("raftlog: unmarshal log file: %w", err)
		}
		if err := fs.mem.Append(entries); err != nil {
			return fmt.Errorf("raftlog: replay log file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("raftlog: read log file: %w", err)
	}

	log.Info().
		Uint64("term", fs.mem.LoadMeta().Term).
		Int("nEntries", len(fs.mem.Range(1, fs.mem.Last().Index+1))).
		Msg("raftlog: loaded from disk")
	return nil
}

func (fs *FileStore) writeLogLocked() error {
	entries := fs.mem.Range(1, fs.mem.Last().Index+1)
	if entries == nil {
		entries = []Entry{}
	}
	out, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("raftlog: marshal log: %w", err)
	}
	return os.WriteFile(fs.logFile, out, 0o644)
}

func (fs *FileStore) writeMetaLocked() error {
	m := fs.mem.LoadMeta()
	out, err := json.Marshal(fileMeta{Term: m.Term, VotedFor: m.VotedFor})
	if err != nil {
		return fmt.Errorf("raftlog: marshal term: %w", err)
	}
	return os.WriteFile(fs.termFile, out, 0o644)
}

func (fs *FileStore) Append(entries []Entry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.mem.Append(entries); err != nil {
		return err
	}
	return fs.writeLogLocked()
}

func (fs *FileStore) Get(index uint64) (Entry, bool) { return fs.mem.Get(index) }

func (fs *FileStore) Range(lo, hi uint64) []Entry { return fs.mem.Range(lo, hi) }

func (fs *FileStore) TruncateSuffix(from uint64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.mem.TruncateSuffix(from); err != nil {
		return err
	}
	return fs.writeLogLocked()
}

func (fs *FileStore) Last() Entry { return fs.mem.Last() }

func (fs *FileStore) LoadMeta() Meta { return fs.mem.LoadMeta() }

func (fs *FileStore) StoreMeta(term uint64, votedFor string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.mem.StoreMeta(term, votedFor); err != nil {
		return err
	}
	return fs.writeMetaLocked()
}
