// Command nrf24ctl configures and exercises an nRF24L01+ transceiver
// from the command line.
package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nrf24ctl: %v\n", err)
		os.Exit(2)
	}
}
