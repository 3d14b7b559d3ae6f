// Package source reads and writes matches in the SkillCorner open-data
// layout:
//
//	<dir>/matches.json
//	<dir>/matches/<id>/match_data.json
//	<dir>/matches/<id>/structured_data.json
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/pkg/logger"
)

const (
	indexFile  = "matches.json"
	matchesDir = "matches"
	metaFile   = "match_data.json"
	framesFile = "structured_data.json"

	ctxCheckEvery = 4096
)

// Loader reads matches from a data directory.
type Loader struct {
	dir    string
	logger logger.Logger
}

// NewLoader returns a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, logger: logger.Get().Named("source")}
}

// Index reads matches.json.
func (l *Loader) Index(ctx context.Context) ([]model.MatchIndexEntry, error) {
	var entries []model.MatchIndexEntry
	if err := readJSON(filepath.Join(l.dir, indexFile), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// IDs returns the indexed match ids, ascending.
func (l *Loader) IDs(ctx context.Context) ([]int64, error) {
	entries, err := l.Index(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Load reads one match's metadata and frames. Frames are decoded one at a
// time so ctx is honoured on large files.
func (l *Loader) Load(ctx context.Context, id int64) (model.Match, error) {
	dir := l.matchDir(id)
	var meta model.MatchMeta
	if err := readJSON(filepath.Join(dir, metaFile), &meta); err != nil {
		return model.Match{}, err
	}

	path := filepath.Join(dir, framesFile)
	f, err := os.Open(path)
	if err != nil {
		return model.Match{}, openErr(path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))
	if _, err := dec.Token(); err != nil {
		return model.Match{}, fmt.Errorf("%s: %w", path, err)
	}
	var frames []model.RawFrame
	for dec.More() {
		if len(frames)%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return model.Match{}, fmt.Errorf("load match %d: %w", id, err)
			}
		}
		var fr model.RawFrame
		if err := dec.Decode(&fr); err != nil {
			return model.Match{}, fmt.Errorf("%s: frame %d: %w", path, len(frames), err)
		}
		frames = append(frames, fr)
	}
	if _, err := dec.Token(); err != nil {
		return model.Match{}, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Debug(ctx, "match loaded",
		logger.Int64("match_id", id),
		logger.Int("frames", len(frames)),
		logger.Int("players", len(meta.Players)),
	)
	return model.Match{ID: id, Date: meta.DateTime, Meta: meta, Frames: frames}, nil
}

func (l *Loader) matchDir(id int64) string {
	return filepath.Join(l.dir, matchesDir, strconv.FormatInt(id, 10))
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return openErr(path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func openErr(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceMissing, path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}

// Write stores match in the layout under dir and adds or replaces its
// entry in matches.json.
func Write(ctx context.Context, dir string, match model.Match) error {
	md := filepath.Join(dir, matchesDir, strconv.FormatInt(match.ID, 10))
	if err := os.MkdirAll(md, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", md, err)
	}
	if err := writeJSON(filepath.Join(md, metaFile), match.Meta); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(md, framesFile), match.Frames); err != nil {
		return err
	}

	indexPath := filepath.Join(dir, indexFile)
	var entries []model.MatchIndexEntry
	if err := readJSON(indexPath, &entries); err != nil && !errors.Is(err, ErrSourceMissing) {
		return err
	}
	entry := model.MatchIndexEntry{
		ID:       match.ID,
		DateTime: match.Date,
		Status:   "closed",
		HomeTeam: match.Meta.HomeTeam,
		AwayTeam: match.Meta.AwayTeam,
	}
	replaced := false
	for i := range entries {
		if entries[i].ID == match.ID {
			entries[i] = entry
			replaced = true
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return writeJSON(indexPath, entries)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
