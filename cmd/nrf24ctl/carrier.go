package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var carrierFlags struct {
	scan bool
}

var carrierCmd = &cobra.Command{
	Use:   "carrier",
	Short: "Check for a carrier on the configured channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		if !carrierFlags.scan {
			got, err := r.HasCarrier()
			if err != nil {
				return err
			}
			fmt.Printf("channel %d: carrier=%v\n", r.Channel(), got)
			return r.SetStandby()
		}
		// Sweep every channel, marking the busy ones.
		for ch := uint8(0); ch <= 125; ch++ {
			if err := r.SetChannel(ch); err != nil {
				return err
			}
			got, err := r.HasCarrier()
			if err != nil {
				return err
			}
			if got {
				fmt.Printf("channel %3d (%.3f GHz): busy\n", ch, 2.4+float64(ch)/1000)
			}
		}
		return r.SetStandby()
	},
}

func init() {
	carrierCmd.Flags().BoolVar(&carrierFlags.scan, "scan", false, "sweep all 126 channels")
	rootCmd.AddCommand(carrierCmd)
}
