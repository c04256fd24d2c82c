package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Limit int
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <term>...",
		Short: "Full-text search across notes",
		Long: `Search the note index. All words of the term must match; each
word matches as a prefix, so "quant" finds "quantum".`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of hits")
	cmd.AddCommand(newSearchRebuildCommand(rootOpts))

	return cmd
}

func runSearch(opts *SearchOptions, term string, cmd *cobra.Command) error {
	formatter := formatterFor(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, _, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	hits, err := st.SearchQuery(cmd.Context(), term, opts.Limit)
	if err != nil {
		return formatter.OperationError(err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(hits)
	}

	if len(hits) == 0 {
		formatter.Textf("No matches for %q", term)
		return nil
	}
	for _, hit := range hits {
		snippet := ""
		if hit.Snippet != nil {
			snippet = *hit.Snippet
		}
		formatter.Textf("%.3f  %s %s  %s", hit.Score, hit.RefType, hit.RefID, snippet)
	}
	return nil
}

func newSearchRebuildCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rebuild",
		Short:         "Rebuild the search index from stored notes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			st, _, err := openStore(opts)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.SearchRebuild(cmd.Context()); err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(map[string]string{"rebuilt": "ok"})
			}
			formatter.Textf("✓ Rebuilt search index")
			return nil
		},
	}
}
