//nolint:whitespace //can't make both the linter and editor happy :(
package season

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mpapenbr/ustsa-points/pkg/model"
	"github.com/mpapenbr/ustsa-points/pkg/repository"
)

// Create stores the points and zero factors of an archive for season.
// Existing entries of the season must have been removed before.
func Create(
	ctx context.Context,
	conn repository.Querier,
	season int,
	archive *model.Archive,
) error {
	for _, name := range archive.RacerNames() {
		for c, v := range archive.Racers[name] {
			if _, err := conn.Exec(ctx,
				"insert into season_points (season, racer, category, points) "+
					"values ($1,$2,$3,$4::text::numeric)",
				season, name, c.String(), v.String()); err != nil {
				return err
			}
		}
	}
	for c, v := range archive.Zeroes {
		if _, err := conn.Exec(ctx,
			"insert into season_zero (season, category, zero) values ($1,$2,$3::text::numeric)",
			season, c.String(), v.String()); err != nil {
			return err
		}
	}
	return nil
}

// CreateRun records a computation for a season.
func CreateRun(ctx context.Context, conn repository.Querier, run *model.DbSeasonRun) error {
	row := conn.QueryRow(ctx,
		"insert into season_run (id, season, racers) values ($1,$2,$3) returning created_at",
		run.ID, run.Season, run.Racers)
	return row.Scan(&run.CreatedAt)
}

// DeleteBySeason removes points and zero factors of season.
// Returns the number of point rows deleted.
func DeleteBySeason(ctx context.Context, conn repository.Querier, season int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from season_points where season=$1", season)
	if err != nil {
		return 0, err
	}
	if _, err := conn.Exec(ctx, "delete from season_zero where season=$1", season); err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

// LoadBySeason reads the archive of season. It returns repository.ErrNoData
// if nothing was stored for this season.
func LoadBySeason(
	ctx context.Context,
	conn repository.Querier,
	season int,
) (*model.Archive, error) {
	ret := model.NewArchive()
	found := false

	rows, err := conn.Query(ctx,
		"select category, zero::text from season_zero where season=$1", season)
	if err != nil {
		return nil, err
	}
	if err := forEach(rows, func(row pgx.CollectableRow) error {
		var cat, val string
		if err := row.Scan(&cat, &val); err != nil {
			return err
		}
		c, d, err := parse(cat, val)
		if err != nil {
			return err
		}
		ret.Zeroes[c] = d
		found = true
		return nil
	}); err != nil {
		return nil, err
	}

	rows, err = conn.Query(ctx,
		"select racer, category, points::text from season_points where season=$1", season)
	if err != nil {
		return nil, err
	}
	if err := forEach(rows, func(row pgx.CollectableRow) error {
		var name, cat, val string
		if err := row.Scan(&name, &cat, &val); err != nil {
			return err
		}
		c, d, err := parse(cat, val)
		if err != nil {
			return err
		}
		if _, ok := ret.Racers[name]; !ok {
			ret.Racers[name] = make(model.Scores)
		}
		ret.Racers[name][c] = d
		found = true
		return nil
	}); err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("season %d: %w", season, repository.ErrNoData)
	}
	return ret, nil
}

// LatestRun returns the most recent computation of season.
func LatestRun(
	ctx context.Context,
	conn repository.Querier,
	season int,
) (*model.DbSeasonRun, error) {
	row := conn.QueryRow(ctx,
		"select id, season, racers, created_at from season_run "+
			"where season=$1 order by created_at desc limit 1", season)
	var item model.DbSeasonRun
	if err := row.Scan(&item.ID, &item.Season, &item.Racers, &item.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("season %d: %w", season, repository.ErrNoData)
		}
		return nil, err
	}
	return &item, nil
}

// Seasons lists all seasons with stored points in ascending order.
func Seasons(ctx context.Context, conn repository.Querier) ([]int, error) {
	rows, err := conn.Query(ctx,
		"select distinct season from season_zero order by season")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func forEach(rows pgx.Rows, fn func(row pgx.CollectableRow) error) error {
	_, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (struct{}, error) {
		return struct{}{}, fn(row)
	})
	return err
}

func parse(cat, val string) (model.Category, decimal.Decimal, error) {
	c, err := model.ParseCategory(cat)
	if err != nil {
		return 0, decimal.Zero, err
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return 0, decimal.Zero, err
	}
	return c, d, nil
}
