package cli

import (
	"github.com/spf13/cobra"

	"github.com/paperflow-app/paperflow/internal/domain"
)

// NewNoteCommand creates the note command group.
func NewNoteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage annotations",
	}

	cmd.AddCommand(newNoteListCommand(rootOpts))
	cmd.AddCommand(newNoteAddCommand(rootOpts))
	cmd.AddCommand(newNoteEditCommand(rootOpts))
	cmd.AddCommand(newNoteDeleteCommand(rootOpts))

	return cmd
}

func newNoteListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <paper-id>",
		Short:         "List notes of a paper",
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

			notes, err := st.ListNotes(cmd.Context(), args[0])
			if err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(notes)
			}
			for _, n := range notes {
				formatter.Textf("%s  p%d  %s", n.ID, n.Page, n.Content)
			}
			return nil
		},
	}
}

type noteAddOptions struct {
	*RootOptions
	Page  int
	X     float64
	Y     float64
	Color string
}

func newNoteAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &noteAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "add <paper-id> <content>",
		Short:         "Add a note to a paper",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

			st, _, err := openStore(opts.RootOptions)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			newNote := domain.NewNote{
				PaperID: args[0],
				Page:    opts.Page,
				X:       opts.X,
				Y:       opts.Y,
				Content: args[1],
			}
			if opts.Color != "" {
				newNote.Color = &opts.Color
			}

			note, err := st.CreateNote(cmd.Context(), newNote)
			if err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(note)
			}
			formatter.Textf("✓ Added note %s on page %d", note.ID, note.Page)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 0, "page number")
	cmd.Flags().Float64Var(&opts.X, "x", 0, "x coordinate")
	cmd.Flags().Float64Var(&opts.Y, "y", 0, "y coordinate")
	cmd.Flags().StringVar(&opts.Color, "color", "", "note color (e.g. #ffcc00)")

	return cmd
}

type noteEditOptions struct {
	*RootOptions
	Content string
	Color   string
}

func newNoteEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &noteEditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "edit <note-id>",
		Short:         "Edit a note's content or color",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := formatterFor(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

			st, _, err := openStore(opts.RootOptions)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			patch := domain.UpdateNote{ID: args[0]}
			if cmd.Flags().Changed("content") {
				patch.Content = &opts.Content
			}
			if cmd.Flags().Changed("color") {
				patch.Color = &opts.Color
			}

			note, err := st.UpdateNote(cmd.Context(), patch)
			if err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(note)
			}
			formatter.Textf("✓ Updated note %s", note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Content, "content", "", "new content")
	cmd.Flags().StringVar(&opts.Color, "color", "", "new color")

	return cmd
}

func newNoteDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <note-id>",
		Short:         "Delete a note",
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

			if err := st.DeleteNote(cmd.Context(), args[0]); err != nil {
				return formatter.OperationError(err)
			}

			if formatter.Format == "json" {
				return formatter.JSON(map[string]string{"deleted": args[0]})
			}
			formatter.Textf("✓ Deleted note %s", args[0])
			return nil
		},
	}
}
