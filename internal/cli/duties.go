package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/emilian8/crew-call-frontend/internal/model"
)

// DutiesOptions holds flags shared by the duties subcommands.
type DutiesOptions struct {
	*RootOptions
	EventID string
}

// NewDutiesCommand creates the duties command group. Every subcommand
// operates on the roster of one event, selected with --event.
func NewDutiesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DutiesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "duties",
		Short: "Manage an event's duty roster",
	}

	cmd.PersistentFlags().StringVar(&opts.EventID, "event", "", "event id (required)")

	cmd.AddCommand(newDutiesListCommand(opts))
	cmd.AddCommand(newDutiesAddCommand(opts))
	cmd.AddCommand(newDutiesAssignCommand(opts))
	cmd.AddCommand(newDutiesUnassignCommand(opts))
	cmd.AddCommand(newDutiesDoneCommand(opts))
	cmd.AddCommand(newDutiesReopenCommand(opts))
	cmd.AddCommand(newDutiesUpdateCommand(opts))
	cmd.AddCommand(newDutiesDeleteCommand(opts))
	cmd.AddCommand(newDutiesArchiveCommand(opts))

	return cmd
}

// dutiesApp builds the App, checks auth, points the duty cache at the
// selected event, and loads its roster.
func dutiesApp(ctx context.Context, opts *DutiesOptions) (*App, error) {
	if opts.EventID == "" {
		return nil, NewExitError(ExitCommandError, "--event is required")
	}
	app, err := opts.app()
	if err != nil {
		return nil, err
	}
	if err := requireAuth(app); err != nil {
		app.Close()
		return nil, err
	}

	app.Duties.SetCurrentEvent(model.Event{ID: opts.EventID})
	if err := app.Duties.LoadForEvent(ctx, opts.EventID); err != nil {
		app.Close()
		return nil, WrapExitError(ExitFailure, "failed to load duties", err)
	}
	return app, nil
}

func printDuties(cmd *cobra.Command, opts *DutiesOptions, app *App) error {
	f := opts.formatter(cmd)
	if opts.Format == "json" {
		return f.Success(app.Duties.Duties())
	}
	return f.Success(renderDuties(app.Duties.Duties(), func(dutyID string) bool {
		return app.Duties.IsArchived(opts.EventID, dutyID)
	}))
}

func newDutiesListCommand(opts *DutiesOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List the event's duties",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			duties := app.Duties.Duties()
			switch model.DutyStatus(status) {
			case model.StatusOpen:
				duties = app.Duties.Open()
			case model.StatusAssigned:
				duties = app.Duties.Assigned()
			case model.StatusDone:
				duties = app.Duties.Done()
			case "":
			default:
				return NewExitError(ExitCommandError, "status must be Open, Assigned, or Done")
			}

			f := opts.formatter(cmd)
			if opts.Format == "json" {
				return f.Success(duties)
			}
			return f.Success(renderDuties(duties, func(dutyID string) bool {
				return app.Duties.IsArchived(opts.EventID, dutyID)
			}))
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (Open|Assigned|Done)")

	return cmd
}

func newDutiesAddCommand(opts *DutiesOptions) *cobra.Command {
	var title, dueAt, assignee string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a duty to the event",
		Long: `Add a duty to the event's roster.

With --assignee the new duty is assigned immediately after creation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Duties.Add(cmd.Context(), title, dueAt, assignee); err != nil {
				return WrapExitError(ExitFailure, "failed to add duty", err)
			}
			return printDuties(cmd, opts, app)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "duty title (required)")
	cmd.Flags().StringVar(&dueAt, "due", "", "due instant, RFC 3339 (required)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assign to this user after creation")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func newDutiesAssignCommand(opts *DutiesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "assign <duty-id> <user-id>",
		Short:         "Assign a duty",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Duties.Assign(cmd.Context(), args[0], args[1]); err != nil {
				return WrapExitError(ExitFailure, "failed to assign duty", err)
			}
			return printDuties(cmd, opts, app)
		},
	}
}

func newDutiesUnassignCommand(opts *DutiesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "unassign <duty-id>",
		Short:         "Return a duty to Open",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Duties.Unassign(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to unassign duty", err)
			}
			return printDuties(cmd, opts, app)
		},
	}
}

func newDutiesDoneCommand(opts *DutiesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "done <duty-id>",
		Short:         "Mark a duty Done",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Duties.MarkDone(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to mark duty done", err)
			}
			return printDuties(cmd, opts, app)
		},
	}
}

func newDutiesReopenCommand(opts *DutiesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "reopen <duty-id>",
		Short:         "Reopen a Done duty",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Duties.Reopen(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to reopen duty", err)
			}
			return printDuties(cmd, opts, app)
		},
	}
}

func newDutiesUpdateCommand(opts *DutiesOptions) *cobra.Command {
	var title, dueAt string

	cmd := &cobra.Command{
		Use:           "update <duty-id>",
		Short:         "Update a duty's title or due instant",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && dueAt == "" {
				return NewExitError(ExitCommandError, "nothing to update: pass --title or --due")
			}
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Duties.Update(cmd.Context(), args[0], title, dueAt); err != nil {
				return WrapExitError(ExitFailure, "failed to update duty", err)
			}
			return printDuties(cmd, opts, app)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&dueAt, "due", "", "new due instant, RFC 3339")

	return cmd
}

func newDutiesDeleteCommand(opts *DutiesOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <duty-id>",
		Short:         "Delete a duty",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Duties.Delete(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to delete duty", err)
			}
			return printDuties(cmd, opts, app)
		},
	}
}

func newDutiesArchiveCommand(opts *DutiesOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <duty-id>",
		Short: "Archive a duty locally",
		Long: `Archive a duty for this client only.

A duty that isn't Done yet is marked Done on the service first; the
archive mark itself never leaves this machine and lasts for the
process lifetime.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := dutiesApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Duties.Archive(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to archive duty", err)
			}
			return printDuties(cmd, opts, app)
		},
	}
}
