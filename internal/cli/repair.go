package cli

import (
	"github.com/spf13/cobra"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/repair"
)

func newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair <file>...",
		Short: "Best-effort recovery of malformed JSON files",
		Long: `Attempt to repair malformed JSON files in place. Files that already
parse are rewritten with consistent indentation; truncated files are
recovered by cutting at the last closing bracket or by taking the first
complete JSON value. Files that cannot be fixed are left untouched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(args)
		},
	}
	return cmd
}

func runRepair(paths []string) error {
	fixed, unfixable := 0, 0
	for _, path := range paths {
		repaired, err := repair.File(path)
		if err != nil {
			unfixable++
			printError("NOFIX %s", path)
			continue
		}
		if repaired {
			fixed++
			printSuccess("FIXED %s", path)
		} else {
			printSuccess("OK    %s", path)
		}
	}

	if unfixable > 0 {
		return errors.New(errors.ErrCodeInvalidJSON, "%d files could not be repaired", unfixable)
	}
	if fixed > 0 {
		printSuccess("repaired %d of %d files", fixed, len(paths))
	}
	return nil
}
