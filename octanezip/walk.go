package octanezip

import (
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// filePair is one file discovered under a source directory: its absolute
// path on disk and its archive-relative path using forward slashes.
type filePair struct {
	absolute string
	archive  string
}

// walkSourceDir enumerates sourceDir recursively, skipping directories and
// symlinks, and returns the (absolute, archive-relative) pairs sorted by
// archive path so that archive contents are reproducible across platforms
// whose directory-walk order is otherwise unspecified (spec.md §9).
//
// Stat'ing every entry is done concurrently via an errgroup: this is the
// "metadata pre-pass" the writer is allowed to parallelize, since it reads
// directory state rather than writing file content.
func walkSourceDir(sourceDir string) ([]filePair, error) {
	var candidates []string
	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("octanezip: walking %s: %w", sourceDir, err)
	}

	pairs := make([]filePair, len(candidates))
	var g errgroup.Group
	for i, path := range candidates {
		i, path := i, path
		g.Go(func() error {
			info, err := os.Lstat(path)
			if err != nil {
				return xerrors.Errorf("octanezip: stat %s: %w", path, err)
			}
			if info.Mode()&os.ModeSymlink != 0 {
				pairs[i] = filePair{}
				return nil
			}
			rel, err := filepath.Rel(sourceDir, path)
			if err != nil {
				return xerrors.Errorf("octanezip: relativizing %s: %w", path, err)
			}
			pairs[i] = filePair{
				absolute: path,
				archive:  filepath.ToSlash(rel),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]filePair, 0, len(pairs))
	for _, p := range pairs {
		if p.absolute == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrEmptyInput
	}
	sort.Slice(out, func(i, j int) bool { return out[i].archive < out[j].archive })
	return out, nil
}
