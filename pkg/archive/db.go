package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/ustsa-points/log"
	"github.com/mpapenbr/ustsa-points/pkg/model"
	"github.com/mpapenbr/ustsa-points/pkg/repository"
	seasonrepos "github.com/mpapenbr/ustsa-points/pkg/repository/season"
)

// DBStore keeps season archives in Postgres.
type DBStore struct {
	pool *pgxpool.Pool
	log  *log.Logger
}

var _ Store = (*DBStore)(nil)

func NewDBStore(pool *pgxpool.Pool) *DBStore {
	return &DBStore{pool: pool, log: log.Default().Named("archive")}
}

func (s *DBStore) Load(ctx context.Context, season int) (*model.Archive, error) {
	ret, err := seasonrepos.LoadBySeason(ctx, s.pool, season)
	if errors.Is(err, repository.ErrNoData) {
		return nil, fmt.Errorf("%w: season %d", ErrArchiveNotFound, season)
	}
	if err != nil {
		return nil, err
	}
	if len(ret.Zeroes) == 0 {
		return nil, fmt.Errorf("%w: season %d has no zero factors", ErrMalformedArchive, season)
	}
	return ret.Normalize(), nil
}

// Save replaces the stored archive of season and records the run.
func (s *DBStore) Save(ctx context.Context, season int, a *model.Archive) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		deleted, err := seasonrepos.DeleteBySeason(ctx, tx, season)
		if err != nil {
			return err
		}
		if deleted > 0 {
			s.log.Info("replacing stored season",
				log.Int("season", season),
				log.Int("rows", deleted))
		}
		if err := seasonrepos.Create(ctx, tx, season, a); err != nil {
			return err
		}
		return seasonrepos.CreateRun(ctx, tx, &model.DbSeasonRun{
			ID:     id,
			Season: season,
			Racers: len(a.Racers),
		})
	})
}
