package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cschnabel/svtracker/internal/api"
	"github.com/cschnabel/svtracker/internal/auth"
	"github.com/cschnabel/svtracker/internal/export"
	"github.com/cschnabel/svtracker/internal/form"
	"github.com/cschnabel/svtracker/internal/ingest"
	"github.com/cschnabel/svtracker/internal/records"
	"github.com/cschnabel/svtracker/internal/render"
	"github.com/cschnabel/svtracker/internal/stats"
)

var (
	serveAddr string

	reportSeason       string
	reportEnvironments []string
	reportFormats      []string
	reportGroups       []string
	reportFrom         string
	reportTo           string
	reportDates        []string
	reportDeck         string
	reportType         string
	reportOutput       string

	exportOut    string
	exportUpload bool
	exportLabel  string

	importCSV string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP dashboard",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		authn, err := auth.New(a.cfg.Auth.Password, a.cfg.Auth.RememberTTL)
		if err != nil {
			return err
		}
		addr := a.cfg.Server.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := api.NewServer(api.Options{
			Records:      a.store,
			Auth:         authn,
			Logger:       a.log.Named("http"),
			StaticDir:    a.cfg.Server.StaticDir,
			CookieSecure: a.cfg.Server.CookieSecure,
			Classes:      a.cfg.Form.Classes,
			Location:     a.loc,
		})
		return srv.Run(cmd.Context(), addr, a.cfg.Server.ShutdownTimeout)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the summary, deck and trend reports",
	Long: `Print the overall summary, per-deck performance and opponent trend for the
filtered records. With --deck the focus analysis for that deck is included.

Examples:
  svtracker report --season S12
  svtracker report --from 2024-06-01 --to 2024-06-30 --output json
  svtracker report --deck Fairy --type Aggro`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		criteria, err := reportCriteria()
		if err != nil {
			return err
		}

		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		all, err := a.store.LoadAll(cmd.Context())
		if err != nil {
			a.log.Warn("reporting on an empty table", zap.Error(err))
		}
		t := records.Filter(all, criteria)

		summary := stats.Summarize(t)
		doc := render.Report{
			NoData:  summary.NoData,
			Records: len(t),
			Summary: render.Summary(summary),
			Decks:   render.Decks(stats.DeckPerformance(t)),
			Trend:   render.Trend(stats.OpponentTrend(t, stats.TrendOptions{IncludeTurns: true}), true),
		}
		if reportDeck != "" {
			deckType := reportType
			if deckType == form.AllTypesOption {
				deckType = ""
			}
			focus := render.Focus(stats.AnalyzeFocus(t, reportDeck, deckType), form.AllTypesOption)
			doc.Focus = &focus
		}
		return render.Encode(cmd.OutOrStdout(), reportOutput, doc)
	},
}

// reportCriteria builds the filter from the report flags.
func reportCriteria() (records.Criteria, error) {
	date, err := records.NewDateFilter(reportFrom, reportTo, reportDates)
	if err != nil {
		return records.Criteria{}, err
	}
	return records.Criteria{
		Season:       reportSeason,
		Environments: reportEnvironments,
		Formats:      reportFormats,
		Groups:       reportGroups,
		Date:         date,
	}, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all records as CSV, or upload them to the export bucket",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		t, err := a.store.LoadAll(cmd.Context())
		if err != nil {
			return err
		}

		if exportUpload {
			uploader, err := export.NewS3Uploader(cmd.Context(), a.cfg.Export)
			if err != nil {
				return err
			}
			key, err := uploader.Upload(cmd.Context(), exportLabel, t, a.now())
			if err != nil {
				return err
			}
			a.log.Info("export uploaded", zap.String("bucket", a.cfg.Export.Bucket), zap.String("key", key), zap.Int("records", len(t)))
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		}

		if exportOut == "" || exportOut == "-" {
			return export.WriteCSV(cmd.OutOrStdout(), t)
		}
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		if err := export.WriteCSV(f, t); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", exportOut, err)
		}
		a.log.Info("export written", zap.String("path", exportOut), zap.Int("records", len(t)))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore records from a CSV export, skipping rows already stored",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		importer := ingest.NewImporter(a.store, a.log.Named("import"))
		res, err := importer.ImportFile(cmd.Context(), importCSV)
		if err != nil {
			return fmt.Errorf("import %s: %w", importCSV, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s: lines=%d appended=%d duplicates=%d blank=%d duration=%s\n",
			res.Path,
			res.LinesRead,
			res.RecordsAppended,
			res.Duplicates,
			res.Blank,
			res.CompletedAt.Sub(res.StartedAt),
		)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.http_addr)")

	reportCmd.Flags().StringVar(&reportSeason, "season", "", "only this season")
	reportCmd.Flags().StringSliceVar(&reportEnvironments, "environment", nil, "only these environments")
	reportCmd.Flags().StringSliceVar(&reportFormats, "format", nil, "only these formats")
	reportCmd.Flags().StringSliceVar(&reportGroups, "group", nil, "only these groups")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first day of a date range (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last day of a date range (YYYY-MM-DD)")
	reportCmd.Flags().StringSliceVar(&reportDates, "date", nil, "specific days (YYYY-MM-DD), not combinable with --from/--to")
	reportCmd.Flags().StringVar(&reportDeck, "deck", "", "include the focus analysis for this deck")
	reportCmd.Flags().StringVar(&reportType, "type", "", "restrict the focus analysis to one deck type")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", render.FormatYAML, "output format (yaml|json)")

	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output file, - for stdout")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "upload to the configured export bucket instead")
	exportCmd.Flags().StringVar(&exportLabel, "label", "records", "name used in the uploaded object key")

	importCmd.Flags().StringVar(&importCSV, "csv", "", "CSV file written by export")
	_ = importCmd.MarkFlagRequired("csv")
}
