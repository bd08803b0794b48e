package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lostma-project/lostma-audit/pkg/models"
)

// withApp builds the app for one command and closes it afterwards.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, app *App) (any, error)) error {
	app, err := NewApp(opts.configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := fn(ctx, app)
	if err != nil {
		return err
	}
	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printTable(cmd.OutOrStdout(), result)
}

func entitiesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entity types of the join graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) (any, error) {
				return app.completeness.Entities(ctx)
			})
		},
	}
}

func completenessCmd(opts *globalOptions) *cobra.Command {
	var (
		language string
		fields   []string
	)

	cmd := &cobra.Command{
		Use:   "completeness [entity]",
		Short: "Report empty fields of one entity, or of every entity when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) (any, error) {
				if len(args) == 0 {
					return app.completeness.AnalyzeAll(ctx, language)
				}
				var selection models.ColumnSelection = models.AllColumns{}
				if len(fields) > 0 {
					selection = models.NewSpecificColumns(fields...)
				}
				return app.completeness.Analyze(ctx, args[0], language, selection)
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Restrict corpus entities to one language")
	cmd.Flags().StringSliceVarP(&fields, "fields", "f", nil, "Only report these fields")
	return cmd
}

func requiredCmd(opts *globalOptions) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "required",
		Short: "Count records with at least one empty required field, per entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) (any, error) {
				return app.completeness.RequiredSummary(ctx, language)
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "Restrict corpus entities to one language")
	return cmd
}

func enumsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enums",
		Short: "Report values outside their controlled vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) (any, error) {
				return app.enums.Validate(ctx)
			})
		},
	}
}

func logReportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log-report",
		Short: "Cross-reference the validation log with row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) (any, error) {
				return app.validation.Report(ctx)
			})
		},
	}
}

func syncCmd(opts *globalOptions) *cobra.Command {
	var recordTypes []string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Re-materialize the warehouse and the schema export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *App) (any, error) {
				return app.sync.Sync(ctx, recordTypes)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&recordTypes, "types", "t", nil, "Restrict the download to these record types")
	return cmd
}

// printTable renders a command result as aligned text.
func printTable(out io.Writer, result any) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	switch v := result.(type) {
	case []models.EntityStatus:
		fmt.Fprintln(tw, "ENTITY\tTABLE\tCORPUS\tREVIEW STATUS\tPRESENT\tREGISTERED")
		for _, e := range v {
			name := e.Name
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%t\t%t\n", name, e.StorageName, e.IsCorpus, e.HasReviewStatus, e.Present, e.Registered)
		}
	case *models.CompletenessReport:
		writeCompleteness(tw, v)
	case []*models.CompletenessReport:
		for i, report := range v {
			if i > 0 {
				fmt.Fprintln(tw)
			}
			writeCompleteness(tw, report)
		}
	case []models.RequiredSummary:
		fmt.Fprintln(tw, "ENTITY\tEMPTY REQUIRED\tTOTAL\t% PROBLEM")
		for _, s := range v {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\n", s.Entity, s.EmptyRequiredRecords, s.TotalRecords, s.PercentageProblem)
		}
	case []models.EnumDefect:
		fmt.Fprintln(tw, "ENTITY\tFIELD\tDEFECTS\tTOTAL\t% PROBLEM\tINVALID VALUES")
		for _, d := range v {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\t%s\n", d.Entity, d.Field, d.DefectCount, d.TotalCount, d.PercentageProblem, strings.Join(d.InvalidValues, ", "))
		}
	case []models.LogDefectReport:
		fmt.Fprintln(tw, "ENTITY\tRECORD TYPE\tON LOG\tTOTAL\t% PROBLEM")
		for _, r := range v {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\n", r.Entity, r.RecordType, r.RecordsOnLog, r.TotalRecords, r.PercentageProblem)
		}
	case *models.SyncResult:
		fmt.Fprintf(tw, "Run:\t%s\n", v.RunID)
		fmt.Fprintf(tw, "Warehouse:\t%s\n", v.WarehousePath)
		fmt.Fprintf(tw, "Schema:\t%s\n", v.SchemaDir)
		fmt.Fprintf(tw, "Duration:\t%s\n", v.Duration)
	default:
		return fmt.Errorf("unsupported result type %T", result)
	}

	return tw.Flush()
}

func writeCompleteness(w io.Writer, r *models.CompletenessReport) {
	title := r.Entity
	if r.Language != "" {
		title += " (" + r.Language + ")"
	}
	fmt.Fprintf(w, "%s\n", title)
	if r.NoData {
		fmt.Fprintln(w, "No data")
		return
	}
	fmt.Fprintln(w, "FIELD\tREQUIREMENT\tEMPTY\t% EMPTY")
	for _, f := range r.Fields {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\n", f.Field, f.Requirement, f.EmptyCount, f.PercentageEmpty)
	}
	fmt.Fprintf(w, "Total records:\t%d\n", r.TotalRecords)
	fmt.Fprintf(w, "Action required:\t%s\n", r.ActionRequired)
	if len(r.ExcludedFields) > 0 {
		fmt.Fprintf(w, "Excluded (not in schema):\t%s\n", strings.Join(r.ExcludedFields, ", "))
	}
}
