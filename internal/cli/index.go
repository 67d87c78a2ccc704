package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/index"
)

type indexOpts struct {
	jsonOut string
	csvOut  string
}

func newIndexCmd() *cobra.Command {
	opts := &indexOpts{}

	cmd := &cobra.Command{
		Use:   "index <corpus-dir>",
		Short: "Export a JSON/CSV inventory of a template corpus",
		Long: `Scan a directory of workflow templates and export an inventory with
per-file title, category, node count, size, and modification time.
Without --json or --csv a summary is printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "write a JSON index to this path")
	cmd.Flags().StringVar(&opts.csvOut, "csv", "", "write a CSV index to this path")

	return cmd
}

func runIndex(cmd *cobra.Command, root string, opts *indexOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	records, err := index.Scan(root)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Scanned %d templates", len(records)))

	if opts.jsonOut != "" {
		if err := writeIndexFile(opts.jsonOut, records, index.WriteJSON); err != nil {
			return err
		}
		printFile(opts.jsonOut)
	}
	if opts.csvOut != "" {
		if err := writeIndexFile(opts.csvOut, records, index.WriteCSV); err != nil {
			return err
		}
		printFile(opts.csvOut)
	}

	if opts.jsonOut == "" && opts.csvOut == "" {
		byCategory := map[string]int{}
		for _, r := range records {
			byCategory[r.Category]++
		}
		printSuccess("%d templates in %d categories", len(records), len(byCategory))
	}
	return nil
}

func writeIndexFile(path string, records []index.Record, write func(w io.Writer, records []index.Record) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return write(f, records)
}
