package cli

import (
	"github.com/spf13/cobra"

	"github.com/paperflow-app/paperflow/internal/domain"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Workspace string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import documents into a workspace",
		Long: `Import one or more files into a workspace.

Files already known by content hash or path are refreshed in place
rather than duplicated. The whole batch is one transaction: a single
unreadable file aborts the import.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Workspace, "workspace", "w", domain.DefaultWorkspaceID, "target workspace id")

	return cmd
}

func runImport(opts *ImportOptions, paths []string, cmd *cobra.Command) error {
	formatter := formatterFor(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, _, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	formatter.VerboseLog("Importing %d file(s) into workspace %s", len(paths), opts.Workspace)

	papers, err := st.ImportPapers(cmd.Context(), domain.PaperImportRequest{
		Paths:       paths,
		WorkspaceID: opts.Workspace,
	})
	if err != nil {
		return formatter.OperationError(err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(papers)
	}

	formatter.Textf("✓ Imported %d paper(s) into %s", len(papers), opts.Workspace)
	for _, p := range papers {
		formatter.Textf("  %s  %s", p.ID, p.Title)
	}
	return nil
}
