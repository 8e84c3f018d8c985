package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mpapenbr/ustsa-points/log"
	"github.com/mpapenbr/ustsa-points/pkg/model"
)

// DefaultPattern names the archive file of a season.
const DefaultPattern = "points%d.json"

const filePerm = 0o644

// FileStore keeps one json file per season in a directory.
type FileStore struct {
	dir     string
	pattern string
	log     *log.Logger
}

var _ Store = (*FileStore)(nil)

type FileStoreOption func(s *FileStore)

// WithPattern sets the file name pattern. It must contain one %d verb for
// the season.
func WithPattern(pattern string) FileStoreOption {
	return func(s *FileStore) {
		s.pattern = pattern
	}
}

func WithLogger(l *log.Logger) FileStoreOption {
	return func(s *FileStore) {
		s.log = l
	}
}

func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	ret := &FileStore{
		dir:     dir,
		pattern: DefaultPattern,
		log:     log.Default().Named("archive"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Path returns the file name of the archive of season.
func (s *FileStore) Path(season int) string {
	return filepath.Join(s.dir, fmt.Sprintf(s.pattern, season))
}

func (s *FileStore) Load(_ context.Context, season int) (*model.Archive, error) {
	path := s.Path(season)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ret, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.log.Debug("archive loaded",
		log.String("path", path),
		log.Int("racers", len(ret.Racers)))
	return ret, nil
}

// Save writes the archive to a temporary file which replaces the target
// file when complete.
func (s *FileStore) Save(_ context.Context, season int, a *model.Archive) error {
	path := s.Path(season)
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, a); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	s.log.Debug("archive saved",
		log.String("path", path),
		log.Int("racers", len(a.Racers)))
	return nil
}
