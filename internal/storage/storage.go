// Package storage persists review state as JSON documents under a
// central root, so reviews from every repository are accessible
// system-wide.
//
// Layout:
//
//	~/.vouch/
//	  index.json                  repo id -> { path, name, lastAccessed }
//	  repos/
//	    <16-hex repo id>/
//	      repo.json               { canonicalPath, displayName }
//	      reviews/
//	        <comparison key>.json ReviewState
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sprite-ai/vouch/internal/model"
)

const envHome = "VOUCH_HOME"

// Root returns the central storage root: $VOUCH_HOME when set,
// otherwise ~/.vouch.
func Root() (string, error) {
	if v := os.Getenv(envHome); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".vouch"), nil
}

// Store reads and writes review state under a fixed root directory.
type Store struct {
	root string
}

// New creates a store rooted at the given directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Open creates a store at the default root.
func Open() (*Store, error) {
	root, err := Root()
	if err != nil {
		return nil, err
	}
	return New(root), nil
}

// RepoID computes the 16-hex-char identifier of a repository from its
// canonical path.
func RepoID(repoPath string) string {
	canonical := repoPath
	if abs, err := filepath.Abs(repoPath); err == nil {
		canonical = abs
	}
	if resolved, err := filepath.EvalSymlinks(canonical); err == nil {
		canonical = resolved
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:8])
}

// RepoDir returns the storage directory for a repository.
func (s *Store) RepoDir(repoPath string) string {
	return filepath.Join(s.root, "repos", RepoID(repoPath))
}

func (s *Store) reviewsDir(repoPath string) string {
	return filepath.Join(s.RepoDir(repoPath), "reviews")
}

// sanitizeKey replaces characters that are problematic in filenames.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, key)
}

func (s *Store) reviewPath(repoPath, key string) string {
	return filepath.Join(s.reviewsDir(repoPath), sanitizeKey(key)+".json")
}

// ConflictError reports that the on-disk review was modified by another
// process since the state being written was loaded.
type ConflictError struct {
	Found   uint64
	Writing uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: on-disk version %d is not older than %d; another process modified the review", e.Found, e.Writing)
}

// Load reads the review state for a comparison, or returns a fresh
// unpersisted state when none exists yet.
func (s *Store) Load(repoPath string, c model.Comparison) (*model.ReviewState, error) {
	path := s.reviewPath(repoPath, c.Key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewReviewState(c, nowRFC3339()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading review %s: %w", c.Key, err)
	}
	var state model.ReviewState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing review %s: %w", c.Key, err)
	}
	if state.Hunks == nil {
		state.Hunks = make(map[string]*model.HunkState)
	}
	return &state, nil
}

// Save writes the review state atomically. When the in-memory version
// is positive, the on-disk version must be strictly older; the session
// bumps the version on every mutation while saves are batched, so any
// on-disk version at or past ours means another writer got there first.
func (s *Store) Save(repoPath string, state *model.ReviewState) error {
	if err := s.registerRepo(repoPath); err != nil {
		return err
	}

	dir := s.reviewsDir(repoPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating reviews dir: %w", err)
	}

	path := s.reviewPath(repoPath, state.Comparison.Key)
	if state.Version > 0 {
		if data, err := os.ReadFile(path); err == nil {
			var existing model.ReviewState
			if json.Unmarshal(data, &existing) == nil && existing.Version >= state.Version {
				return &ConflictError{Found: existing.Version, Writing: state.Version}
			}
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding review %s: %w", state.Comparison.Key, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing review %s: %w", state.Comparison.Key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming review %s: %w", state.Comparison.Key, err)
	}
	return nil
}

// Ensure writes an empty review to disk if none exists, so new reviews
// show up in listings immediately.
func (s *Store) Ensure(repoPath string, c model.Comparison) error {
	if _, err := os.Stat(s.reviewPath(repoPath, c.Key)); err == nil {
		return nil
	}
	return s.Save(repoPath, model.NewReviewState(c, nowRFC3339()))
}

// Delete removes a saved review. Deleting a review that does not exist
// is not an error.
func (s *Store) Delete(repoPath string, c model.Comparison) error {
	err := os.Remove(s.reviewPath(repoPath, c.Key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting review %s: %w", c.Key, err)
	}
	return nil
}

// Summary is the listing view of a saved review.
type Summary struct {
	Comparison    model.Comparison `json:"comparison"`
	Hunks         int              `json:"hunks"`
	TrustPatterns int              `json:"trustPatterns"`
	Version       uint64           `json:"version"`
	CreatedAt     string           `json:"createdAt"`
	UpdatedAt     string           `json:"updatedAt"`
}

func summarize(state *model.ReviewState) Summary {
	return Summary{
		Comparison:    state.Comparison,
		Hunks:         len(state.Hunks),
		TrustPatterns: len(state.TrustList),
		Version:       state.Version,
		CreatedAt:     state.CreatedAt,
		UpdatedAt:     state.UpdatedAt,
	}
}

// List returns summaries of every saved review in a repository, most
// recently updated first. Unreadable files are skipped.
func (s *Store) List(repoPath string) ([]Summary, error) {
	dir := s.reviewsDir(repoPath)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading reviews dir: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var state model.ReviewState
		if err := json.Unmarshal(data, &state); err != nil {
			continue
		}
		summaries = append(summaries, summarize(&state))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt > summaries[j].UpdatedAt
	})
	return summaries, nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
