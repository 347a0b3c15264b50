package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/patientlist/internal/config"
	"github.com/ehr/patientlist/internal/domain/patient"
	"github.com/ehr/patientlist/internal/fhirclient"
	"github.com/ehr/patientlist/internal/listing"
	"github.com/ehr/patientlist/internal/platform/fhir"
)

// clientFromFlags builds a FHIR client from FHIR_BASE_URL, overridable with
// --base-url. Client logs go to stderr so stdout stays parseable.
func clientFromFlags(cmd *cobra.Command) (*fhirclient.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if base, _ := cmd.Flags().GetString("base-url"); base != "" {
		cfg.FHIRBaseURL = base
	}

	logger := zerolog.Nop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return fhirclient.New(cfg.FHIRBaseURL, fhirclient.WithLogger(logger)), cfg, nil
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "", "FHIR server base URL (defaults to FHIR_BASE_URL)")
	cmd.Flags().BoolP("verbose", "v", false, "Log requests to stderr")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List patients from a FHIR server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			pageSize, _ := flags.GetInt("page-size")
			if pageSize <= 0 {
				pageSize = cfg.PageSize
			}
			pages, _ := flags.GetInt("pages")
			output, _ := flags.GetString("output")

			var filters listing.Filters
			filters.Search, _ = flags.GetString("search")
			filters.Gender, _ = flags.GetString("gender")
			if flags.Changed("active") {
				active, _ := flags.GetBool("active")
				filters.Active = &active
			}
			var sort listing.Sort
			sort.Key, _ = flags.GetString("sort")
			sort.Order, _ = flags.GetString("order")

			ctl := listing.New(client,
				listing.WithPageSize(pageSize),
				listing.WithCriteria(filters, sort),
			)
			view, err := loadPages(cmd.Context(), ctl, pages)
			if err != nil {
				return err
			}

			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), view.Records)
			}
			return writePatientTable(cmd.OutOrStdout(), view, time.Now())
		},
	}

	addClientFlags(cmd)
	cmd.Flags().String("search", "", "Match name or MRN (case-insensitive substring)")
	cmd.Flags().String("gender", "", "Filter by gender: male, female, other, unknown")
	cmd.Flags().Bool("active", false, "Filter by active status (omit for any)")
	cmd.Flags().String("sort", "", "Sort key: Name, MRN or Age")
	cmd.Flags().String("order", "asc", "Sort order: asc or desc")
	cmd.Flags().Int("page-size", 0, "Records per page (defaults to PAGE_SIZE)")
	cmd.Flags().Int("pages", 1, "Number of pages to load")
	return cmd
}

// loadPages loads the first page, then keeps loading while pages remain.
func loadPages(ctx context.Context, ctl *listing.Controller, pages int) (listing.View, error) {
	if err := ctl.Load(ctx); err != nil {
		return ctl.View(), err
	}
	for i := 1; i < pages && ctl.View().HasMore; i++ {
		if err := ctl.LoadMore(ctx); err != nil {
			return ctl.View(), err
		}
	}
	return ctl.View(), nil
}

func writePatientTable(out io.Writer, view listing.View, today time.Time) error {
	if view.Empty {
		_, err := fmt.Fprintln(out, "No patients found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMRN\tGENDER\tAGE\tBIRTH DATE\tSTATUS")
	for i := range view.Records {
		p := &view.Records[i]
		status := "inactive"
		if p.Active {
			status = "active"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			listing.DisplayName(p),
			orNA(p.MRN()),
			listing.FormatGender(p.Gender),
			listing.FormatAge(p, today),
			listing.FormatBirthDate(p.BirthDate),
			status,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	footer := fmt.Sprintf("Showing %d of %d patients", len(view.Records), view.Total)
	if view.HasMore {
		footer += " (more available, use --pages)"
	}
	_, err := fmt.Fprintln(out, footer)
	return err
}

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")

			bundle, err := client.GetByID(cmd.Context(), args[0])
			var ferr *fhirclient.Error
			if errors.As(err, &ferr) && ferr.NotFound() {
				return fmt.Errorf("no patient with id %q: %w", args[0], err)
			}
			if err != nil {
				return err
			}
			patients, err := fhir.DecodeEntries[patient.Patient](bundle)
			if err != nil {
				return err
			}
			if len(patients) == 0 {
				return fmt.Errorf("no patient with id %q", args[0])
			}

			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), patients[0])
			}
			return writePatientDetail(cmd.OutOrStdout(), &patients[0], time.Now())
		},
	}
	addClientFlags(cmd)
	return cmd
}

func writePatientDetail(out io.Writer, p *patient.Patient, today time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Name", listing.DisplayName(p)},
		{"ID", p.ID},
		{"MRN", orNA(p.MRN())},
		{"Gender", listing.FormatGender(p.Gender)},
		{"Birth date", listing.FormatBirthDate(p.BirthDate)},
		{"Age", listing.FormatAge(p, today)},
		{"Active", strconv.FormatBool(p.Active)},
		{"Phone", listing.ContactValue(p, "phone")},
		{"Email", listing.ContactValue(p, "email")},
		{"Address", listing.FormatAddress(p)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s:\t%s\n", r[0], r[1])
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orNA(s string) string {
	if s == "" {
		return listing.NotAvailable
	}
	return s
}
