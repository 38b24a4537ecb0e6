package main

import (
	"github.com/spf13/cobra"

	"nrf24.dev"
	"nrf24.dev/serialdev"
	"nrf24.dev/spidev"
)

var (
	spiPort    string
	cePin      string
	csnPin     string
	serialPort string
	baudRate   int
	simulate   bool
)

var rootCmd = &cobra.Command{
	Use:   "nrf24ctl",
	Short: "Control an nRF24L01+ transceiver",
	Long: `nrf24ctl configures and exercises an nRF24L01+ 2.4 GHz transceiver.

Connection modes:
  SPI:    --spi SPI0.0 --ce GPIO22 --csn GPIO8   (default)
  Serial: --serial /dev/ttyUSB0 [--baud 115200]  (bridge MCU)
  Sim:    --sim                                  (in-memory loopback chip)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&spiPort, "spi", "", "SPI port name, empty for the first available")
	pf.StringVar(&cePin, "ce", "GPIO22", "chip-enable GPIO pin name")
	pf.StringVar(&csnPin, "csn", "GPIO8", "chip-select GPIO pin name")
	pf.StringVar(&serialPort, "serial", "", "serial bridge device instead of SPI")
	pf.IntVarP(&baudRate, "baud", "b", 115200, "baud rate (serial bridge only)")
	pf.BoolVar(&simulate, "sim", false, "drive an in-memory simulated chip")
}

// openRadio constructs the radio over the bus the flags select.
func openRadio() (*nrf24.Radio, func() error, error) {
	var (
		bus    nrf24.Bus
		closer = func() error { return nil }
	)
	switch {
	case simulate:
		sim := nrf24.NewSimulator()
		sim.Loopback = true
		bus = sim
	case serialPort != "":
		d, err := serialdev.Open(serialPort, baudRate)
		if err != nil {
			return nil, nil, err
		}
		bus, closer = d, d.Close
	default:
		d, err := spidev.Open(spidev.Options{Port: spiPort, CE: cePin, CSN: csnPin})
		if err != nil {
			return nil, nil, err
		}
		bus, closer = d, d.Close
	}
	r, err := nrf24.New(bus)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return r, closer, nil
}
