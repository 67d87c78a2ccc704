package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/index"
	"github.com/gejjech/flowviz/pkg/workflow"
)

type validateOpts struct {
	quiet bool
}

func newValidateCmd() *cobra.Command {
	opts := &validateOpts{}

	cmd := &cobra.Command{
		Use:   "validate <file-or-directory>",
		Short: "Check workflow files against the minimal n8n contract",
		Long: `Check that workflow JSON files carry the fields the renderer relies on:
a non-empty nodes list, per-node id/name/type/position, unique node IDs,
and two-number position arrays.

When given a directory, all JSON files beneath it are checked (skipping
node_modules, .git, and similar trees). The command exits non-zero if
any file has findings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print files with findings")

	return cmd
}

func runValidate(cmd *cobra.Command, target string, opts *validateOpts) error {
	logger := loggerFromContext(cmd.Context())

	info, err := os.Stat(target)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInputNotFound, err, "cannot access %s", target)
	}

	var paths []string
	if info.IsDir() {
		err := index.Walk(target, func(path string) error {
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "walk %s", target)
		}
	} else {
		paths = []string{target}
	}

	checked, failed := 0, 0
	for _, path := range paths {
		findings, err := validateFile(path)
		if err != nil {
			logger.Debugf("skipping %s: %v", path, err)
			continue
		}
		checked++
		if len(findings) == 0 {
			if !opts.quiet {
				printSuccess("%s", path)
			}
			continue
		}
		failed++
		printError("%s", path)
		for _, f := range findings {
			fmt.Println("    " + StyleDim.Render(f.String()))
		}
	}

	fmt.Println()
	if failed > 0 {
		printWarning("%d of %d files have findings", failed, checked)
		return errors.New(errors.ErrCodeInvalidInput, "%d invalid files", failed)
	}
	printSuccess("%d files valid", checked)
	return nil
}

// validateFile parses a single workflow file and returns its findings.
// Unparseable JSON is reported as a finding rather than an error so a
// corpus run keeps going.
func validateFile(path string) ([]workflow.Finding, error) {
	doc, err := workflow.ReadFile(path)
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvalidJSON) {
			return []workflow.Finding{{Field: "$", Message: "not valid JSON"}}, nil
		}
		return nil, err
	}
	return workflow.Validate(doc), nil
}
