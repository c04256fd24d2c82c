package cli

import (
	"github.com/spf13/cobra"
)

// NewWorkspaceCommand creates the workspace command group.
func NewWorkspaceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
	}

	cmd.AddCommand(newWorkspaceListCommand(rootOpts))
	cmd.AddCommand(newWorkspaceCreateCommand(rootOpts))
	cmd.AddCommand(newWorkspaceRenameCommand(rootOpts))
	cmd.AddCommand(newWorkspaceDeleteCommand(rootOpts))

	return cmd
}

func newWorkspaceListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List workspaces",
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

			workspaces, err := st.ListWorkspaces(cmd.Context())
			if err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(workspaces)
			}
			for _, ws := range workspaces {
				formatter.Textf("%s  %s", ws.ID, ws.Name)
			}
			return nil
		},
	}
}

func newWorkspaceCreateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "create <name>",
		Short:         "Create a workspace",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			st, _, err := openStore(opts)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			ws, err := st.CreateWorkspace(cmd.Context(), args[0])
			if err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(ws)
			}
			formatter.Textf("✓ Created workspace %s (%s)", ws.ID, ws.Name)
			return nil
		},
	}
}

func newWorkspaceRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rename <id> <name>",
		Short:         "Rename a workspace",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			st, _, err := openStore(opts)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			ws, err := st.RenameWorkspace(cmd.Context(), args[0], args[1])
			if err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(ws)
			}
			formatter.Textf("✓ Renamed workspace %s to %s", ws.ID, ws.Name)
			return nil
		},
	}
}

func newWorkspaceDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a workspace and everything in it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			st, _, err := openStore(opts)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.DeleteWorkspace(cmd.Context(), args[0]); err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(map[string]string{"deleted": args[0]})
			}
			formatter.Textf("✓ Deleted workspace %s", args[0])
			return nil
		},
	}
}
