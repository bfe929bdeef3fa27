package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studypath/studypath-api/internal/curriculum"
)

// ErrInvalidDocument is returned when a file fails the structural check.
var ErrInvalidDocument = errors.New("document is structurally invalid")

func newValidateCmd() *cobra.Command {
	var normalize bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a curriculum file",
		Long:  "Runs the structural check and, if it passes, the prerequisite check. Prerequisite problems are reported as warnings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if normalize {
				if doc, err = curriculum.ToDocument(curriculum.Normalize(doc)); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			structure := curriculum.ValidateDocument(doc)
			if !structure.Valid {
				for _, msg := range structure.Errors {
					fmt.Fprintf(out, "error: %s\n", msg)
				}
				return ErrInvalidDocument
			}

			p, err := curriculum.ToPensum(doc)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				return ErrInvalidDocument
			}
			prereqs := curriculum.ValidatePrerequisites(p)
			for _, msg := range prereqs.Errors {
				fmt.Fprintf(out, "warning: %s\n", msg)
			}
			fmt.Fprintf(out, "ok: %d terms, %d subjects, %d warnings\n", len(p.Terms), len(p.AllSubjects()), len(prereqs.Errors))
			return nil
		},
	}
	cmd.Flags().BoolVar(&normalize, "normalize", false, "map foreign field names before validating")
	return cmd
}
