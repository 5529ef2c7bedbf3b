package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"note-trainer/midi"
)

const portsTimeout = 3 * time.Second

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	Long:  `Lists MIDI input and output ports. Use the names for midi.inputFilter in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPorts(cmd)
	},
}

func listPorts(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== MIDI Input Ports ===")
	fmt.Fprintf(out, "(waiting up to %s...)\n", portsTimeout)

	ports, err := midi.ListPorts(portsTimeout)
	if errors.Is(err, midi.ErrPortsTimeout) {
		fmt.Fprintln(out, "\nTIMEOUT! The MIDI driver is hung.")
		fmt.Fprintln(out, "On macOS: sudo killall coreaudiod midiserver")
		return err
	}

	ins, outs := ports.Names()
	for i, name := range ins {
		fmt.Fprintf(out, "  %d: %s\n", i, name)
	}
	fmt.Fprintln(out, "\n=== MIDI Output Ports ===")
	for i, name := range outs {
		fmt.Fprintf(out, "  %d: %s\n", i, name)
	}
	return nil
}
