package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"nrf24.dev"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the chip configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration read from the chip",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		fmt.Print(formatConfig(r.Config()))
		return nil
	},
}

var set struct {
	channel  int
	rate     string
	crc      int
	power    string
	width    int
	delay    int
	count    int
	txAddr   string
	rxAddrs  []string
	rxOn     string
	autoAck  string
	payloads []string
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change configuration fields",
	Example: `  nrf24ctl config set --channel 76 --rate 250k --power 0
  nrf24ctl config set --tx-addr E7E7E7E7E7 --rx-addr 0:E7E7E7E7E7
  nrf24ctl config set --payload 0:32 --payload 1:dynamic`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, closer, err := openRadio()
		if err != nil {
			return err
		}
		defer closer()
		cfg := r.Config()
		if err := applyFlags(cmd, &cfg); err != nil {
			return err
		}
		if err := r.SetConfig(cfg); err != nil {
			return err
		}
		fmt.Print(formatConfig(r.Config()))
		return nil
	},
}

func init() {
	f := configSetCmd.Flags()
	f.IntVar(&set.channel, "channel", 0, "RF channel (0-125)")
	f.StringVar(&set.rate, "rate", "", "air data rate: 250k, 1M or 2M")
	f.IntVar(&set.crc, "crc", 0, "CRC length in bytes (0-2)")
	f.StringVar(&set.power, "power", "", "PA level in dBm: -18, -12, -6 or 0")
	f.IntVar(&set.width, "addr-width", 0, "address width in bytes (3-5)")
	f.IntVar(&set.delay, "retr-delay", -1, "retransmit delay step (0-15)")
	f.IntVar(&set.count, "retr-count", -1, "retransmit count (0-15)")
	f.StringVar(&set.txAddr, "tx-addr", "", "transmit address, hex, msb first")
	f.StringArrayVar(&set.rxAddrs, "rx-addr", nil, "pipe:hexaddr, e.g. 1:C2C2C2C2C2")
	f.StringVar(&set.rxOn, "rx-on", "", "comma-separated pipes to enable, e.g. 0,1")
	f.StringVar(&set.autoAck, "auto-ack", "", "comma-separated pipes that acknowledge")
	f.StringArrayVar(&set.payloads, "payload", nil, "pipe:len or pipe:dynamic")

	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func applyFlags(cmd *cobra.Command, cfg *nrf24.Config) error {
	f := cmd.Flags()
	if f.Changed("channel") {
		if set.channel < 0 || set.channel > 255 {
			return fmt.Errorf("channel %d out of range", set.channel)
		}
		cfg.Channel = uint8(set.channel)
	}
	if f.Changed("rate") {
		rate, err := parseRate(set.rate)
		if err != nil {
			return err
		}
		cfg.Rate = rate
	}
	if f.Changed("crc") {
		if set.crc < 0 || set.crc > 2 {
			return fmt.Errorf("crc length %d out of range 0-2", set.crc)
		}
		cfg.CRC = nrf24.CRCMode(set.crc)
	}
	if f.Changed("power") {
		power, err := parsePower(set.power)
		if err != nil {
			return err
		}
		cfg.Power = power
	}
	if f.Changed("addr-width") {
		if set.width < 3 || set.width > 5 {
			return fmt.Errorf("address width %d out of range 3-5", set.width)
		}
		cfg.AddrWidth = uint8(set.width)
	}
	if f.Changed("retr-delay") {
		cfg.Retransmit.Delay = uint8(set.delay)
	}
	if f.Changed("retr-count") {
		cfg.Retransmit.Count = uint8(set.count)
	}
	if f.Changed("tx-addr") {
		a, err := parseAddr(set.txAddr)
		if err != nil {
			return err
		}
		cfg.TxAddr = a
	}
	for _, s := range set.rxAddrs {
		pipe, val, err := splitPipe(s)
		if err != nil {
			return err
		}
		a, err := parseAddr(val)
		if err != nil {
			return err
		}
		cfg.RxAddrs[pipe] = a
	}
	if f.Changed("rx-on") {
		pipes, err := parsePipeSet(set.rxOn)
		if err != nil {
			return err
		}
		cfg.RxEnabled = pipes
	}
	if f.Changed("auto-ack") {
		pipes, err := parsePipeSet(set.autoAck)
		if err != nil {
			return err
		}
		cfg.AutoAck = pipes
	}
	for _, s := range set.payloads {
		pipe, val, err := splitPipe(s)
		if err != nil {
			return err
		}
		if val == "dynamic" {
			cfg.PayloadWidths[pipe] = 0
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 || n > nrf24.MaxPayload {
			return fmt.Errorf("payload length %q out of range 1-%d", val, nrf24.MaxPayload)
		}
		cfg.PayloadWidths[pipe] = uint8(n)
	}
	return nil
}

func parseRate(s string) (nrf24.DataRate, error) {
	switch strings.ToLower(s) {
	case "250k", "250kbps":
		return nrf24.Rate250Kbps, nil
	case "1m", "1mbps":
		return nrf24.Rate1Mbps, nil
	case "2m", "2mbps":
		return nrf24.Rate2Mbps, nil
	}
	return 0, fmt.Errorf("unknown data rate %q", s)
}

func parsePower(s string) (nrf24.PALevel, error) {
	switch s {
	case "-18":
		return nrf24.PA18dBm, nil
	case "-12":
		return nrf24.PA12dBm, nil
	case "-6":
		return nrf24.PA6dBm, nil
	case "0":
		return nrf24.PA0dBm, nil
	}
	return 0, fmt.Errorf("unknown pa level %q", s)
}

func formatPower(p nrf24.PALevel) string {
	return [...]string{"-18 dBm", "-12 dBm", "-6 dBm", "0 dBm"}[p&3]
}

// parseAddr reads a hex address written most significant byte first,
// as addresses are usually quoted, and flips it to the chip's
// on-air order.
func parseAddr(s string) (nrf24.Addr, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nrf24.Addr{}, fmt.Errorf("address %q: %w", s, err)
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return nrf24.NewAddr(b...)
}

func splitPipe(s string) (int, string, error) {
	pipe, val, ok := strings.Cut(s, ":")
	if !ok {
		return 0, "", fmt.Errorf("%q: want pipe:value", s)
	}
	n, err := strconv.Atoi(pipe)
	if err != nil || n < 0 || n >= nrf24.PipeCount {
		return 0, "", fmt.Errorf("bad pipe in %q", s)
	}
	return n, val, nil
}

func parsePipeSet(s string) ([nrf24.PipeCount]bool, error) {
	var pipes [nrf24.PipeCount]bool
	if s == "" || s == "none" {
		return pipes, nil
	}
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n >= nrf24.PipeCount {
			return pipes, fmt.Errorf("bad pipe %q", part)
		}
		pipes[n] = true
	}
	return pipes, nil
}

func formatPipeSet(pipes [nrf24.PipeCount]bool) string {
	var on []string
	for i, p := range pipes {
		if p {
			on = append(on, strconv.Itoa(i))
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ",")
}

func formatConfig(cfg nrf24.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "channel:     %d (%.3f GHz)\n", cfg.Channel, 2.4+float64(cfg.Channel)/1000)
	fmt.Fprintf(&b, "rate:        %v\n", cfg.Rate)
	fmt.Fprintf(&b, "power:       %s\n", formatPower(cfg.Power))
	fmt.Fprintf(&b, "crc:         %d bytes\n", cfg.CRC)
	fmt.Fprintf(&b, "addr width:  %d bytes\n", cfg.AddrWidth)
	fmt.Fprintf(&b, "tx addr:     %v\n", cfg.TxAddr)
	fmt.Fprintf(&b, "retransmit:  %d tries, %d us delay\n",
		cfg.Retransmit.Count, 250*(int(cfg.Retransmit.Delay)+1))
	fmt.Fprintf(&b, "rx enabled:  %s\n", formatPipeSet(cfg.RxEnabled))
	fmt.Fprintf(&b, "auto ack:    %s\n", formatPipeSet(cfg.AutoAck))
	for i := 0; i < nrf24.PipeCount; i++ {
		width := "dynamic"
		if w := cfg.PayloadWidths[i]; w != 0 {
			width = fmt.Sprintf("%d bytes", w)
		}
		fmt.Fprintf(&b, "pipe %d:      %v, %s\n", i, cfg.RxAddrs[i], width)
	}
	return b.String()
}
