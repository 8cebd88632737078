package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// RepoIndexEntry is one registered repository in the central index.
type RepoIndexEntry struct {
	RepoID       string `json:"repoId"`
	Path         string `json:"path"`
	Name         string `json:"name"`
	LastAccessed string `json:"lastAccessed"`
}

type repoIndex struct {
	Repos map[string]RepoIndexEntry `json:"repos"`
}

func (s *Store) indexPath() string {
	return filepath.Join(s.root, "index.json")
}

func (s *Store) loadIndex() (repoIndex, error) {
	idx := repoIndex{Repos: make(map[string]RepoIndexEntry)}
	data, err := os.ReadFile(s.indexPath())
	if errors.Is(err, fs.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return idx, fmt.Errorf("reading repo index: %w", err)
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return idx, fmt.Errorf("parsing repo index: %w", err)
	}
	if idx.Repos == nil {
		idx.Repos = make(map[string]RepoIndexEntry)
	}
	return idx, nil
}

func (s *Store) saveIndex(idx repoIndex) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating storage root: %w", err)
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding repo index: %w", err)
	}
	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing repo index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath()); err != nil {
		return fmt.Errorf("renaming repo index: %w", err)
	}
	return nil
}

// registerRepo upserts a repository into the index and creates its
// storage directory.
func (s *Store) registerRepo(repoPath string) error {
	canonical := repoPath
	if abs, err := filepath.Abs(repoPath); err == nil {
		canonical = abs
	}
	if resolved, err := filepath.EvalSymlinks(canonical); err == nil {
		canonical = resolved
	}

	repoDir := s.RepoDir(repoPath)
	if err := os.MkdirAll(filepath.Join(repoDir, "reviews"), 0o755); err != nil {
		return fmt.Errorf("creating repo storage dir: %w", err)
	}

	name := filepath.Base(canonical)
	meta, err := json.MarshalIndent(map[string]string{
		"canonicalPath": canonical,
		"displayName":   name,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding repo metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(repoDir, "repo.json"), meta, 0o644); err != nil {
		return fmt.Errorf("writing repo metadata: %w", err)
	}

	idx, err := s.loadIndex()
	if err != nil {
		return err
	}
	id := RepoID(repoPath)
	idx.Repos[id] = RepoIndexEntry{
		RepoID:       id,
		Path:         canonical,
		Name:         name,
		LastAccessed: nowRFC3339(),
	}
	return s.saveIndex(idx)
}

// Repos lists registered repositories, most recently accessed first.
func (s *Store) Repos() ([]RepoIndexEntry, error) {
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	repos := make([]RepoIndexEntry, 0, len(idx.Repos))
	for _, entry := range idx.Repos {
		repos = append(repos, entry)
	}
	sort.Slice(repos, func(i, j int) bool {
		return repos[i].LastAccessed > repos[j].LastAccessed
	})
	return repos, nil
}

// UnregisterRepo removes a repository from the index and deletes its
// stored reviews.
func (s *Store) UnregisterRepo(repoID string) error {
	if err := os.RemoveAll(filepath.Join(s.root, "repos", repoID)); err != nil {
		return fmt.Errorf("removing repo storage: %w", err)
	}
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}
	delete(idx.Repos, repoID)
	return s.saveIndex(idx)
}

// RepoSummary is a review summary tagged with its repository, for
// cross-repo listings.
type RepoSummary struct {
	Summary
	RepoPath string `json:"repoPath"`
	RepoName string `json:"repoName"`
}

// ListAll returns summaries of every saved review across all registered
// repositories, most recently updated first. Repositories whose paths
// no longer exist are skipped.
func (s *Store) ListAll() ([]RepoSummary, error) {
	repos, err := s.Repos()
	if err != nil {
		return nil, err
	}

	var all []RepoSummary
	for _, entry := range repos {
		if _, err := os.Stat(entry.Path); err != nil {
			continue
		}
		summaries, err := s.List(entry.Path)
		if err != nil {
			continue
		}
		for _, sum := range summaries {
			all = append(all, RepoSummary{Summary: sum, RepoPath: entry.Path, RepoName: entry.Name})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt > all[j].UpdatedAt
	})
	return all, nil
}
