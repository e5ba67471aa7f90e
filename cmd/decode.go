package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"fireplace_rf/internal/capture"
	"fireplace_rf/internal/decoder"
	"fireplace_rf/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode captured bursts offline",
	Long: `decode reads one burst of signed pulse durations per line from file (or
stdin) and prints the command each burst decodes to. Lines may carry a label
before a colon, as written by the serial sniffer:

  rx: 2000 -413 413 -826 ...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().String("protocol", "", "remote protocol: a or b (default receiver.protocol)")
	rootCmd.AddCommand(decodeCmd)
}

// printer decodes each burst and writes one line per result.
type printer struct {
	dec *decoder.Decoder
	out io.Writer
}

func (p *printer) HandleCapture(_ context.Context, durations []int) (decoder.Result, error) {
	res := p.dec.Decode(durations)
	if res.Packet == nil {
		_, err := fmt.Fprintln(p.out, "-")
		return res, err
	}
	_, err := fmt.Fprintf(p.out, "%s\t%s\n", res.Command, res.Packet)
	return res, err
}

func runDecode(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("protocol")
	if name == "" {
		name = viper.GetString("receiver.protocol")
	}
	proto, err := decoder.LookupProtocol(name)
	if err != nil {
		return err
	}

	var in io.ReadCloser = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open capture file: %w", err)
		}
		in = f
	}
	src := capture.NewLineSource(in, in)
	defer func() { _ = src.Close() }()

	log := logger.Get(viper.GetString("log_level"))
	p := &printer{dec: decoder.NewDecoder(proto, log.Named("decoder")), out: cmd.OutOrStdout()}
	if err := capture.Run(cmd.Context(), src, p, log.Named("capture")); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.dec.Statistics().String())
	return nil
}
