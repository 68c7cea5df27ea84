package cli

import (
	"github.com/spf13/cobra"
)

var (
	hostFlag string
	portFlag int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a Titan engine and render its feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		if cmd.Flags().Changed("host") {
			a.Config.Server.Host = hostFlag
		}
		if cmd.Flags().Changed("port") {
			a.Config.Server.Port = portFlag
		}
		if err := a.Config.Validate(); err != nil {
			return err
		}
		return a.Run(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&hostFlag, "host", "localhost", "Titan server host")
	runCmd.Flags().IntVar(&portFlag, "port", 9001, "Titan server port")
}
