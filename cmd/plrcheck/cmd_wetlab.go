package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"plrcheck/internal/wetlab"
)

const defaultWetlabDB = "wetlab_results.db"

func newWetlabCommand() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "wetlab",
		Short: "Manage wet-lab measurement results in the local SQLite store",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", envOrDefault("WETLAB_DB", defaultWetlabDB), "path to the SQLite database file")

	cmd.AddCommand(
		newWetlabInitCommand(&dbPath),
		newWetlabUpsertCommand(&dbPath),
		newWetlabQueryCommand(&dbPath),
		newWetlabUpdateCommand(&dbPath),
		newWetlabDeleteCommand(&dbPath),
	)

	return cmd
}

func newWetlabInitCommand(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database file and schema if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := wetlab.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "wetlab store ready at %s\n", *dbPath)
			return nil
		},
	}
}

func newWetlabUpsertCommand(dbPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Insert or update measurement records from a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			store, err := wetlab.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			outcome, err := store.Upsert(cmd.Context(), records)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "upserted %d of %d record(s)\n", outcome.Upserted, outcome.Attempted)
			for _, failure := range outcome.Failures {
				fmt.Fprintln(cmd.ErrOrStderr(), failure)
			}
			if len(outcome.Failures) > 0 {
				return fmt.Errorf("%d record(s) rejected", len(outcome.Failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with an array of records (defaults to stdin)")

	return cmd
}

func newWetlabQueryCommand(dbPath *string) *cobra.Command {
	var (
		filter    wetlab.QueryFilter
		replicate int
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query measurement records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("replicate") {
				filter.Replicate = &replicate
			}

			store, err := wetlab.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := store.Query(cmd.Context(), filter, limit)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.ExperimentID, "experiment", "", "filter by experiment id")
	cmd.Flags().StringVar(&filter.SampleID, "sample", "", "filter by sample id")
	cmd.Flags().StringVar(&filter.AssayName, "assay", "", "filter by assay name")
	cmd.Flags().StringVar(&filter.Condition, "condition", "", "filter by condition")
	cmd.Flags().IntVar(&replicate, "replicate", 0, "filter by replicate number")
	cmd.Flags().StringVar(&filter.MeasurementUnit, "unit", "", "filter by measurement unit")
	cmd.Flags().StringVar(&filter.Operator, "operator", "", "filter by operator")
	cmd.Flags().StringVar(&filter.Instrument, "instrument", "", "filter by instrument")
	cmd.Flags().StringVar(&filter.MeasuredAtFrom, "from", "", "inclusive lower bound on measured_at")
	cmd.Flags().StringVar(&filter.MeasuredAtTo, "to", "", "inclusive upper bound on measured_at")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of rows to return")

	return cmd
}

func newWetlabUpdateCommand(dbPath *string) *cobra.Command {
	var (
		key  wetlab.Key
		sets []string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update whitelisted fields of one record selected by its composite key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updates := make(map[string]any, len(sets))
			for _, set := range sets {
				field, value, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q, expected field=value", set)
				}
				updates[field] = value
			}

			store, err := wetlab.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			affected, err := store.Update(cmd.Context(), key, updates)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "updated %d row(s)\n", affected)
			return nil
		},
	}

	addKeyFlags(cmd, &key)
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value pair to update (repeatable)")

	return cmd
}

func newWetlabDeleteCommand(dbPath *string) *cobra.Command {
	var key wetlab.Key

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one record selected by its composite key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := wetlab.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.Delete(cmd.Context(), key)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d row(s)\n", deleted)
			return nil
		},
	}

	addKeyFlags(cmd, &key)

	return cmd
}

func addKeyFlags(cmd *cobra.Command, key *wetlab.Key) {
	cmd.Flags().StringVar(&key.ExperimentID, "experiment", "", "experiment id")
	cmd.Flags().StringVar(&key.SampleID, "sample", "", "sample id")
	cmd.Flags().StringVar(&key.AssayName, "assay", "", "assay name")
	cmd.Flags().StringVar(&key.Condition, "condition", "", "condition")
	cmd.Flags().IntVar(&key.Replicate, "replicate", 0, "replicate number")
}

func readRecords(file string, stdin io.Reader) ([]wetlab.Record, error) {
	var data []byte
	var err error
	if file == "" || file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var records []recordPayload
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	out := make([]wetlab.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.toRecord())
	}
	return out, nil
}

type recordPayload struct {
	ExperimentID     string  `json:"experiment_id"`
	SampleID         string  `json:"sample_id"`
	AssayName        string  `json:"assay_name"`
	Condition        string  `json:"condition"`
	Replicate        int     `json:"replicate"`
	MeasurementValue float64 `json:"measurement_value"`
	MeasurementUnit  string  `json:"measurement_unit"`
	Operator         *string `json:"operator"`
	Instrument       *string `json:"instrument"`
	MeasuredAt       string  `json:"measured_at"`
	Notes            *string `json:"notes"`
}

func (r recordPayload) toRecord() wetlab.Record {
	return wetlab.Record{
		Key: wetlab.Key{
			ExperimentID: r.ExperimentID,
			SampleID:     r.SampleID,
			AssayName:    r.AssayName,
			Condition:    r.Condition,
			Replicate:    r.Replicate,
		},
		MeasurementValue: r.MeasurementValue,
		MeasurementUnit:  r.MeasurementUnit,
		Operator:         r.Operator,
		Instrument:       r.Instrument,
		MeasuredAt:       r.MeasuredAt,
		Notes:            r.Notes,
	}
}
