package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/salary-spy/internal/salary"
	"github.com/spigell/salary-spy/internal/store"
)

var errNoRecords = errors.New("no records in file")

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load salary records from a yaml file into the sqlite store",
	Run: func(cmd *cobra.Command, _ []string) {
		importRecords(cmd)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("file", "f", "", "yaml file with a list of salary records")
	importCmd.MarkFlagRequired("file")
}

func importRecords(cmd *cobra.Command) {
	ctx := context.Background()

	logger, _, gateway := bootstrap(ctx)
	defer gateway.Close()

	if gateway.Driver() != store.DriverSQLite {
		logger.Fatal("import supports the sqlite driver only", zap.String("driver", gateway.Driver()))
	}
	if !gateway.Available() {
		logger.Fatal("sqlite store is not usable", zap.Error(gateway.Reason()))
	}

	file, _ := cmd.Flags().GetString("file")
	f, err := os.Open(file)
	if err != nil {
		logger.Fatal("opening records file", zap.Error(err))
	}
	defer f.Close()

	records, err := readRecords(f, time.Now())
	if err != nil {
		logger.Fatal("reading records", zap.Error(err), zap.String("file", file))
	}

	db, ok := gateway.Backend().(*store.SQLite)
	if !ok {
		logger.Fatal("unexpected sqlite backend", zap.String("type", fmt.Sprintf("%T", gateway.Backend())))
	}

	if err := db.Insert(ctx, records); err != nil {
		logger.Fatal("inserting records", zap.Error(err))
	}

	logger.Info("records imported", zap.Int("count", len(records)), zap.String("database", db.Path()))
}

// readRecords decodes a yaml list of records and validates every entry.
func readRecords(r io.Reader, now time.Time) ([]salary.Record, error) {
	var raw []salary.Record
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoRecords
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	if len(raw) == 0 {
		return nil, errNoRecords
	}

	records := make([]salary.Record, 0, len(raw))
	for i, r := range raw {
		record, err := salary.NewRecord(r.Employer, r.JobTitle, r.City, r.Salary, r.Year, r.Source, now)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, record)
	}

	return records, nil
}
