package cli

import (
	"github.com/spf13/cobra"
)

// NewNotifyCommand creates the notify command group.
func NewNotifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Read your notifications",
	}

	cmd.AddCommand(newNotifyListCommand(rootOpts))
	cmd.AddCommand(newNotifyReadCommand(rootOpts))
	cmd.AddCommand(newNotifyDeleteCommand(rootOpts))

	return cmd
}

func notifyList(cmd *cobra.Command, rootOpts *RootOptions, app *App) error {
	f := rootOpts.formatter(cmd)
	if rootOpts.Format == "json" {
		return f.Success(app.Notifications.Notifications())
	}
	return f.Success(renderNotifications(app.Notifications.Notifications()))
}

func newNotifyListCommand(rootOpts *RootOptions) *cobra.Command {
	var onlyUnread bool

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List your notifications",
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

			if err := app.Notifications.Refresh(cmd.Context(), onlyUnread); err != nil {
				return WrapExitError(ExitFailure, "failed to load notifications", err)
			}
			return notifyList(cmd, rootOpts, app)
		},
	}

	cmd.Flags().BoolVar(&onlyUnread, "unread", false, "only unread notifications")

	return cmd
}

func newNotifyReadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "read <notification-id>",
		Short:         "Mark a notification read",
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

			if err := app.Notifications.Refresh(cmd.Context(), false); err != nil {
				return WrapExitError(ExitFailure, "failed to load notifications", err)
			}
			if err := app.Notifications.MarkRead(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to mark notification read", err)
			}
			return notifyList(cmd, rootOpts, app)
		},
	}
}

func newNotifyDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <notification-id>",
		Short:         "Delete a notification",
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

			if err := app.Notifications.Refresh(cmd.Context(), false); err != nil {
				return WrapExitError(ExitFailure, "failed to load notifications", err)
			}
			if err := app.Notifications.Delete(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to delete notification", err)
			}
			return notifyList(cmd, rootOpts, app)
		},
	}
}
