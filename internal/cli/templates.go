package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTemplatesCommand creates the templates command group.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage your duty templates",
	}

	cmd.AddCommand(newTemplatesListCommand(rootOpts))
	cmd.AddCommand(newTemplatesCreateCommand(rootOpts))
	cmd.AddCommand(newTemplatesUpdateCommand(rootOpts))
	cmd.AddCommand(newTemplatesDeleteCommand(rootOpts))
	cmd.AddCommand(newTemplatesApplyCommand(rootOpts))

	return cmd
}

func templatesList(cmd *cobra.Command, rootOpts *RootOptions, app *App) error {
	f := rootOpts.formatter(cmd)
	if rootOpts.Format == "json" {
		return f.Success(app.Templates.Templates())
	}
	return f.Success(renderTemplates(app.Templates.Templates()))
}

func newTemplatesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List your templates",
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

			if err := app.Templates.List(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "failed to load templates", err)
			}
			return templatesList(cmd, rootOpts, app)
		},
	}
}

func newTemplatesCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var title string
	var members, duties []string

	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a template",
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

			if err := app.Templates.Create(cmd.Context(), title, members, duties); err != nil {
				return WrapExitError(ExitFailure, "failed to create template", err)
			}
			return templatesList(cmd, rootOpts, app)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "template title (required)")
	cmd.Flags().StringSliceVar(&members, "member", nil, "member user id (repeatable)")
	cmd.Flags().StringSliceVar(&duties, "duty", nil, "standard duty title (repeatable)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTemplatesUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var title string
	var members, duties []string

	cmd := &cobra.Command{
		Use:   "update <template-id>",
		Short: "Update a template",
		Long: `Update a template's title, member list, or standard duties.

Only the supplied flags change; passing --member or --duty replaces the
whole corresponding list.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && !cmd.Flags().Changed("member") && !cmd.Flags().Changed("duty") {
				return NewExitError(ExitCommandError, "nothing to update: pass --title, --member, or --duty")
			}
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := requireAuth(app); err != nil {
				return err
			}

			if !cmd.Flags().Changed("member") {
				members = nil
			} else if members == nil {
				members = []string{}
			}
			if !cmd.Flags().Changed("duty") {
				duties = nil
			} else if duties == nil {
				duties = []string{}
			}

			if err := app.Templates.Update(cmd.Context(), args[0], title, members, duties); err != nil {
				return WrapExitError(ExitFailure, "failed to update template", err)
			}
			return templatesList(cmd, rootOpts, app)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringSliceVar(&members, "member", nil, "replacement member list (repeatable)")
	cmd.Flags().StringSliceVar(&duties, "duty", nil, "replacement standard duty list (repeatable)")

	return cmd
}

func newTemplatesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <template-id>",
		Short:         "Delete a template",
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

			if err := app.Templates.Delete(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "failed to delete template", err)
			}
			return templatesList(cmd, rootOpts, app)
		},
	}
}

func newTemplatesApplyCommand(rootOpts *RootOptions) *cobra.Command {
	var eventID string

	cmd := &cobra.Command{
		Use:   "apply <template-id>",
		Short: "Apply a template to an event",
		Long: `Expand a template into concrete duties on an event.

The duty roster is not reloaded here; run 'crewcall duties list' to see
the expanded duties.`,
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

			application, err := app.Templates.ApplyToEvent(cmd.Context(), args[0], eventID)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to apply template", err)
			}
			f := rootOpts.formatter(cmd)
			if rootOpts.Format == "json" {
				return f.Success(application)
			}
			return f.Success(fmt.Sprintf("Applied %d duties (application %s)", application.Applied, application.ID))
		},
	}

	cmd.Flags().StringVar(&eventID, "event", "", "target event id (required)")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}
