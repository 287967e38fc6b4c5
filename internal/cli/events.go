package cli

import (
	"github.com/spf13/cobra"

	"github.com/emilian8/crew-call-frontend/internal/model"
)

// NewEventsCommand creates the events command group.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage the events you belong to",
	}

	cmd.AddCommand(newEventsListCommand(rootOpts))
	cmd.AddCommand(newEventsCreateCommand(rootOpts))
	cmd.AddCommand(newEventsDeleteCommand(rootOpts))
	cmd.AddCommand(newEventsMembersCommand(rootOpts))
	cmd.AddCommand(newEventsInviteCommand(rootOpts))
	cmd.AddCommand(newEventsRemoveCommand(rootOpts))
	cmd.AddCommand(newEventsActivateCommand(rootOpts))

	return cmd
}

func newEventsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List your events",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := requireAuth(app); err != nil {
				return err
			}

			if err := app.Events.LoadMine(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "failed to load events", err)
			}
			f := rootOpts.formatter(cmd)
			if rootOpts.Format == "json" {
				return f.Success(app.Events.Events())
			}
			return f.Success(renderEvents(app.Events.Events()))
		},
	}
}

func newEventsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var title, startsAt, endsAt string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Long: `Create an event with you as organizer.

Instants are RFC 3339, e.g. 2025-06-01T18:00:00Z.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := requireAuth(app); err != nil {
				return err
			}

			if err := app.Events.Create(cmd.Context(), title, startsAt, endsAt); err != nil {
				return WrapExitError(ExitFailure, "failed to create event", err)
			}
			f := rootOpts.formatter(cmd)
			if rootOpts.Format == "json" {
				return f.Success(app.Events.Events())
			}
			return f.Success(renderEvents(app.Events.Events()))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "event title (required)")
	cmd.Flags().StringVar(&startsAt, "starts", "", "start instant, RFC 3339 (required)")
	cmd.Flags().StringVar(&endsAt, "ends", "", "end instant, RFC 3339 (required)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("starts")
	_ = cmd.MarkFlagRequired("ends")

	return cmd
}

func newEventsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <event-id>",
		Short:         "Delete an event",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := requireAuth(app); err != nil {
				return err
			}

			if err := app.Events.Delete(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to delete event", err)
			}
			return rootOpts.formatter(cmd).Success("Deleted " + args[0])
		},
	}
}

func newEventsMembersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "members <event-id>",
		Short:         "List an event's members",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := requireAuth(app); err != nil {
				return err
			}

			if err := app.Events.LoadMembers(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to load members", err)
			}
			f := rootOpts.formatter(cmd)
			if rootOpts.Format == "json" {
				return f.Success(app.Events.Members(args[0]))
			}
			return f.Success(renderMembers(app.Events.Members(args[0])))
		},
	}
}

func newEventsInviteCommand(rootOpts *RootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:           "invite <event-id> <user-id>",
		Short:         "Invite a user to an event",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := requireAuth(app); err != nil {
				return err
			}

			memberRole := model.Role(role)
			if memberRole != model.RoleOrganizer && memberRole != model.RoleDutyMember {
				return NewExitError(ExitCommandError, "role must be Organizer or DutyMember")
			}
			if err := app.Events.Invite(cmd.Context(), args[0], args[1], memberRole); err != nil {
				return WrapExitError(ExitFailure, "failed to invite", err)
			}
			f := rootOpts.formatter(cmd)
			if rootOpts.Format == "json" {
				return f.Success(app.Events.Members(args[0]))
			}
			return f.Success(renderMembers(app.Events.Members(args[0])))
		},
	}

	cmd.Flags().StringVar(&role, "role", string(model.RoleDutyMember), "role for the invitee (Organizer|DutyMember)")

	return cmd
}

func newEventsRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <event-id> <user-id>",
		Short:         "Remove a member from an event",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := requireAuth(app); err != nil {
				return err
			}

			if err := app.Events.RemoveMember(cmd.Context(), args[0], args[1]); err != nil {
				return WrapExitError(ExitFailure, "failed to remove member", err)
			}
			return rootOpts.formatter(cmd).Success("Removed " + args[1])
		},
	}
}

func newEventsActivateCommand(rootOpts *RootOptions) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:           "activate <event-id>",
		Short:         "Toggle an event's active flag",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := requireAuth(app); err != nil {
				return err
			}

			if err := app.Events.SetActive(cmd.Context(), args[0], !off); err != nil {
				return WrapExitError(ExitFailure, "failed to set active flag", err)
			}
			if off {
				return rootOpts.formatter(cmd).Success("Deactivated " + args[0])
			}
			return rootOpts.formatter(cmd).Success("Activated " + args[0])
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "clear the flag instead of setting it")

	return cmd
}
