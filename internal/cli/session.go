package cli

import (
	"github.com/spf13/cobra"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Email    string
	Password string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		Long: `Authenticate against the CrewCall service.

On success the credential is persisted, so later commands run
authenticated until 'crewcall logout'.

Example:
  crewcall login --email alice@example.com --password secret`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Session.Login(cmd.Context(), opts.Email, opts.Password); err != nil {
				return WrapExitError(ExitFailure, "login failed", err)
			}
			f := opts.formatter(cmd)
			if opts.Format == "json" {
				return f.Success(map[string]string{"actor": app.Session.ActorID(), "email": app.Session.Email()})
			}
			return f.Success("Logged in as " + app.Session.Email())
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	*RootOptions
	Email    string
	Password string
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "register",
		Short:         "Create a new account",
		Long:          "Create a new CrewCall account. Registration never logs in; follow up with 'crewcall login'.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app()
			if err != nil {
				return err
			}
			defer app.Close()

			created, err := app.Session.Register(cmd.Context(), opts.Email, opts.Password)
			if err != nil {
				return WrapExitError(ExitFailure, "registration failed", err)
			}
			f := opts.formatter(cmd)
			if opts.Format == "json" {
				return f.Success(map[string]any{"created": created, "message": app.Session.SuccessMessage()})
			}
			return f.Success(app.Session.SuccessMessage())
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "logout",
		Short:         "Drop the persisted session",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := rootOpts.app()
			if err != nil {
				return err
			}
			defer app.Close()

			app.Session.Logout()
			return rootOpts.formatter(cmd).Success("Logged out")
		},
	}
	return cmd
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "whoami",
		Short:         "Show the current session identity",
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
			f := rootOpts.formatter(cmd)
			if rootOpts.Format == "json" {
				return f.Success(map[string]string{"actor": app.Session.ActorID()})
			}
			return f.Success(app.Session.ActorID())
		},
	}
	return cmd
}
