package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var recvFlags struct {
	count int
	text  bool
}

var recvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Listen and print received packets",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		received := 0
		for recvFlags.count == 0 || received < recvFlags.count {
			pipe, ok, err := r.CanRead()
			if err != nil {
				return err
			}
			if !ok {
				time.Sleep(time.Millisecond)
				continue
			}
			p, err := r.Read()
			if err != nil {
				return err
			}
			if recvFlags.text {
				fmt.Printf("pipe %d: %q\n", pipe, p.Bytes())
			} else {
				fmt.Printf("pipe %d: % x\n", pipe, p.Bytes())
			}
			received++
		}
		return r.SetStandby()
	},
}

func init() {
	recvCmd.Flags().IntVarP(&recvFlags.count, "count", "n", 0, "stop after this many packets, 0 for forever")
	recvCmd.Flags().BoolVarP(&recvFlags.text, "text", "t", false, "print payloads as text")
	rootCmd.AddCommand(recvCmd)
}
