// Package cli implements pensumctl, an offline tool for checking and
// converting curriculum files.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/studypath/studypath-api/internal/curriculum"
	"github.com/studypath/studypath-api/internal/models"
)

// NewRootCmd creates the top-level "pensumctl" command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pensumctl",
		Short:         "Validate, normalize and summarise curriculum files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newValidateCmd(),
		newNormalizeCmd(),
		newStatsCmd(),
		newTemplateCmd(),
	)

	return root
}

func readDocument(path string) (interface{}, error) {
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return curriculum.ParseDocument(raw)
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}

func readProgress(path string) (models.Progress, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var progress models.Progress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, fmt.Errorf("decoding progress: %w", err)
	}
	if invalid := progress.Invalid(); len(invalid) > 0 {
		return nil, fmt.Errorf("unknown status for subjects %v", invalid)
	}
	return progress, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
