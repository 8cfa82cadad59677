package main

import (
	"fmt"
	"os"

	"github.com/benepick/benepick/internal/cli"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/spf13/cobra"
)

var tryCmd = &cobra.Command{
	Use:   "try [registration|onboarding|chat]",
	Short: "Talk to a track in the terminal",
	Long: `Runs a conversation against in-process services. The default track is
chat. A completed registration continues into onboarding; onboarding alone
needs --user-id of an existing account.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(domain.KindRegistration), string(domain.KindOnboarding), string(domain.KindChat)},
	RunE: func(cmd *cobra.Command, args []string) error {
		track := domain.KindChat
		if len(args) == 1 {
			track = domain.Kind(args[0])
		}
		if !track.Valid() {
			return fmt.Errorf("unknown track %q", track)
		}
		userID, _ := cmd.Flags().GetInt64("user-id")
		plain, _ := cmd.Flags().GetBool("plain")

		app, err := newApp(cmd, true)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Try(ctx, app, cli.TryOptions{
			Track:  track,
			UserID: userID,
			In:     os.Stdin,
			Out:    os.Stdout,
			Plain:  plain,
		})
	},
}

func init() {
	rootCmd.AddCommand(tryCmd)
	tryCmd.Flags().Int64("user-id", 0, "Account to onboard")
	tryCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}
