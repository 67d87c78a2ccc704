package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gejjech/flowviz/pkg/errors"
	"github.com/gejjech/flowviz/pkg/index"
)

type searchOpts struct {
	keywords   []string
	categories []string
	limit      int
	content    bool
	pathsOnly  bool
}

func newSearchCmd() *cobra.Command {
	opts := &searchOpts{}

	cmd := &cobra.Command{
		Use:   "search <corpus-dir>",
		Short: "Keyword search over a corpus of workflow templates",
		Long: `Search workflow template files under a directory. All keywords must
match (case-insensitive) against the file path, workflow title, and
optionally the raw JSON content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.keywords, "query", "q", nil, "keyword to match (repeatable, all must match)")
	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "restrict to top-level category directories (repeatable)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "maximum number of results (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.content, "content", false, "also match against raw file content")
	cmd.Flags().BoolVar(&opts.pathsOnly, "paths-only", false, "print matching paths only")

	return cmd
}

func runSearch(root string, opts *searchOpts) error {
	if len(opts.keywords) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one --query keyword is required")
	}

	hits, err := index.Search(root, index.Query{
		Keywords:      opts.keywords,
		Categories:    opts.categories,
		Limit:         opts.limit,
		SearchContent: opts.content,
	})
	if err != nil {
		return err
	}

	if opts.pathsOnly {
		for _, h := range hits {
			fmt.Println(h.RelativePath)
		}
		return nil
	}

	for _, h := range hits {
		title := h.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Println(StyleValue.Render(title))
		detail := h.RelativePath
		if h.NodesCount != nil {
			detail += fmt.Sprintf(" · %d nodes", *h.NodesCount)
		}
		detail += " · matched " + strings.Join(h.Matched, ", ")
		fmt.Println("  " + StyleDim.Render(detail))
	}

	fmt.Println()
	printSuccess("%d results", len(hits))
	return nil
}
