package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/studypath/studypath-api/internal/curriculum"
)

func newTemplateCmd() *cobra.Command {
	var career, title, faculty string
	var terms int
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print an empty curriculum skeleton",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := curriculum.NewEmptyPensum(career, title, faculty, time.Now())
			if err != nil {
				return err
			}
			for n := 1; n <= terms; n++ {
				term := curriculum.TermTemplate(n)
				term.Subjects = append(term.Subjects, curriculum.SubjectTemplate())
				p.Terms = append(p.Terms, term)
			}
			return writeJSON(cmd.OutOrStdout(), p.Document())
		},
	}
	cmd.Flags().StringVar(&career, "career", "", "career name")
	cmd.Flags().StringVar(&title, "title", "", "degree title")
	cmd.Flags().StringVar(&faculty, "faculty", "", "faculty")
	cmd.Flags().IntVar(&terms, "terms", 1, "number of empty terms")
	return cmd
}
