package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studypath/studypath-api/internal/curriculum"
)

func newStatsCmd() *cobra.Command {
	var progressPath string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Summarise credits, term progress and available subjects",
		Long:  "Progress is read from --progress, or from the file's own progress field when omitted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if result := curriculum.ValidateDocument(doc); !result.Valid {
				return fmt.Errorf("%w: %s", ErrInvalidDocument, result.Errors[0])
			}
			p, err := curriculum.ToPensum(doc)
			if err != nil {
				return err
			}

			progress, err := readProgress(progressPath)
			if err != nil {
				return err
			}
			if progress == nil {
				progress = p.Progress
			}

			overview := curriculum.Overview(p, progress)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), overview)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s - %s (%s)\n", p.Career, p.Title, p.Faculty)
			fmt.Fprintf(out, "credits: %d/%d  subjects: %d/%d  progress: %d%%\n\n",
				overview.Stats.ApprovedCredits, overview.Stats.TotalCredits,
				overview.Stats.ApprovedSubjects, overview.Stats.TotalSubjects,
				overview.Stats.ProgressPercentage)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TERM\tNAME\tAPPROVED\tPROGRESS")
			for _, term := range overview.Terms {
				fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%d%%\n", term.Number, term.Name, term.Progress.Approved, term.Progress.Total, term.Progress.Percentage)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, "\navailable:")
			if len(overview.Available) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			for _, s := range overview.Available {
				fmt.Fprintf(out, "  %s  %s (%d cr, term %d)\n", s.Code, s.Name, s.Credits, s.Term)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&progressPath, "progress", "p", "", "JSON file mapping subject codes to statuses")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the overview as JSON")
	return cmd
}
