package archive

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/ustsa-points/log"
	"github.com/mpapenbr/ustsa-points/pkg/archive"
	"github.com/mpapenbr/ustsa-points/pkg/cmd/util"
	"github.com/mpapenbr/ustsa-points/pkg/config"
)

func NewArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "transfers season archives between files and the database",
	}
	cmd.PersistentFlags().StringVarP(&config.DataDir,
		"data-dir",
		"d",
		".",
		"directory containing the archive files")
	cmd.PersistentFlags().StringVar(&config.ArchivePattern,
		"archive-pattern",
		archive.DefaultPattern,
		"file name of the season archive (%d is replaced by the year)")

	cmd.AddCommand(newTransferCmd("import <year>",
		"copies the archive file of a season into the database",
		func(file, db archive.Store) (from, to archive.Store) { return file, db }))
	cmd.AddCommand(newTransferCmd("export <year>",
		"writes the archive of a season stored in the database to a file",
		func(file, db archive.Store) (from, to archive.Store) { return db, file }))
	return cmd
}

type direction func(file, db archive.Store) (from, to archive.Store)

func newTransferCmd(use, short string, dir direction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return transfer(cmd.Context(), year, dir)
		},
	}
}

func transfer(ctx context.Context, year int, dir direction) error {
	sqlLogger := util.SetupLogging()
	defer func() { _ = log.Sync() }()

	pool, err := util.OpenDB(ctx, sqlLogger, nil)
	if err != nil {
		return err
	}
	defer pool.Close()

	from, to := dir(
		archive.NewFileStore(config.DataDir, archive.WithPattern(config.ArchivePattern)),
		archive.NewDBStore(pool))
	return Copy(ctx, year, from, to)
}

// Copy loads the archive of year from one store and saves it to another.
func Copy(ctx context.Context, year int, from, to archive.Store) error {
	a, err := from.Load(ctx, year)
	if err != nil {
		return err
	}
	if err := to.Save(ctx, year, a); err != nil {
		return err
	}
	log.Info("Archive transferred",
		log.Int("year", year),
		log.Int("racers", len(a.Racers)))
	return nil
}
