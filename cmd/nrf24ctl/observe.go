package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Print the transmit telemetry counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		o, err := r.Observe()
		if err != nil {
			return err
		}
		fmt.Printf("lost:    %d packets since channel change\n", o.Lost())
		fmt.Printf("retries: %d for the last packet\n", o.Retries())
		return r.SetStandby()
	},
}

func init() {
	rootCmd.AddCommand(observeCmd)
}
