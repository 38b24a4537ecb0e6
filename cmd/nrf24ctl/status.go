package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the chip and print its state",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		rxEmpty, err := r.RxEmpty()
		if err != nil {
			return err
		}
		txEmpty, err := r.TxEmpty()
		if err != nil {
			return err
		}
		o, err := r.Observe()
		if err != nil {
			return err
		}
		if err := r.SetStandby(); err != nil {
			return err
		}
		fmt.Println("chip:        connected")
		fmt.Printf("rx fifo:     empty=%v\n", rxEmpty)
		fmt.Printf("tx fifo:     empty=%v\n", txEmpty)
		fmt.Printf("lost:        %d packets since channel change\n", o.Lost())
		fmt.Printf("retries:     %d for the last packet\n", o.Retries())
		fmt.Print(formatConfig(r.Config()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
