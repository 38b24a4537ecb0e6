package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"nrf24.dev"
)

var sendFlags struct {
	text bool
	poll bool
}

var sendCmd = &cobra.Command{
	Use:   "send <payload>",
	Short: "Transmit one packet",
	Long: `Send queues one packet and waits for the chip to report the outcome.
The payload is hex unless --text is given. A packet that exhausts its
retransmit budget is reported as lost, not as an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		packet := []byte(args[0])
		if !sendFlags.text {
			var err error
			packet, err = hex.DecodeString(args[0])
			if err != nil {
				return fmt.Errorf("payload: %w", err)
			}
		}
		if len(packet) == 0 || len(packet) > nrf24.MaxPayload {
			return fmt.Errorf("payload is %d bytes, want 1-%d", len(packet), nrf24.MaxPayload)
		}
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		if err := r.Send(packet); err != nil {
			return err
		}
		if sendFlags.poll {
			return pollOutcome(r)
		}
		if err := r.WaitEmpty(); err != nil {
			return err
		}
		o, err := r.Observe()
		if err != nil {
			return err
		}
		fmt.Printf("sent %d bytes, %d retries, %d lost\n", len(packet), o.Retries(), o.Lost())
		return nil
	},
}

// pollOutcome drives the cooperative completion poll instead of
// blocking in WaitEmpty.
func pollOutcome(r *nrf24.Radio) error {
	for {
		st, err := r.PollSend()
		if err != nil {
			return err
		}
		switch st {
		case nrf24.SendDone:
			fmt.Println("sent")
			return nil
		case nrf24.SendFailed:
			fmt.Println("lost: retransmit budget exhausted")
			return nil
		}
		time.Sleep(time.Millisecond)
	}
}

func init() {
	sendCmd.Flags().BoolVarP(&sendFlags.text, "text", "t", false, "payload is literal text, not hex")
	sendCmd.Flags().BoolVar(&sendFlags.poll, "poll", false, "poll for completion instead of blocking")
	rootCmd.AddCommand(sendCmd)
}
