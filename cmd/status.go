package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the salary store and voice widget configuration state",
	Run: func(_ *cobra.Command, _ []string) {
		status()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func status() {
	ctx := context.Background()

	_, config, gateway := bootstrap(ctx)
	defer gateway.Close()

	if gateway.Available() {
		pterm.Success.Printfln("salary store ready (driver %s)", gateway.Driver())
	} else {
		pterm.Warning.Printfln("salary store unavailable (driver %s): %v", gateway.Driver(), gateway.Reason())
		pterm.Info.Println("searches run in demo mode with estimated examples")
	}

	if config.VoiceEnabled() {
		pterm.Success.Println("voice widget enabled")
	} else {
		pterm.Info.Println("voice widget disabled: public key or assistant id is missing")
	}
}
