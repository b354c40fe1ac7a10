package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
	"github.com/roman-kulish/bladerf/internal/usbprobe"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print board name, USB speed and device information",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		dev, err := openDevice()
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, dev.Close())
		}()

		return printInfo(cmd.OutOrStdout(), dev)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "List bladeRF boards attached over USB",
	RunE: func(cmd *cobra.Command, args []string) error {
		boards, err := usbprobe.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(boards) == 0 {
			fmt.Fprintln(out, "no bladeRF found")
			return nil
		}
		for _, b := range boards {
			fmt.Fprintf(out, "%s\n  identifier: %s\n  speed: %s\n", b, b.Identifier(), b.Speed)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringP("device", "d", "", "device identifier (default: first board)")
	bindFlag(infoCmd, "capture.device", "device")
}

// deviceDescriber is the part of *bladerf.Device printed by info.
type deviceDescriber interface {
	BoardName() (string, error)
	DeviceSpeed() (bladerf.DeviceSpeed, error)
	DeviceInfo() (bladerf.DeviceInfo, error)
}

func printInfo(out io.Writer, dev deviceDescriber) error {
	name, err := dev.BoardName()
	if err != nil {
		return fmt.Errorf("error reading board name: %w", err)
	}
	speed, err := dev.DeviceSpeed()
	if err != nil {
		return fmt.Errorf("error reading device speed: %w", err)
	}
	info, err := dev.DeviceInfo()
	if err != nil {
		return fmt.Errorf("error reading device info: %w", err)
	}

	fmt.Fprintf(out, "%-13s%s\n", "Board:", name)
	fmt.Fprintf(out, "%-13s%s\n", "Speed:", speed)
	fmt.Fprintf(out, "%-13s%s\n", "Backend:", info.Backend)
	fmt.Fprintf(out, "%-13sbus %d address %d\n", "USB:", info.USBBus, info.USBAddr)
	fmt.Fprintf(out, "%-13s%d\n", "Instance:", info.Instance)

	for _, field := range []struct {
		name string
		fn   func() (string, error)
	}{
		{"Serial", info.Serial},
		{"Manufacturer", info.Manufacturer},
		{"Product", info.Product},
	} {
		v, err := field.fn()
		if err != nil {
			v = "<" + err.Error() + ">"
		}
		fmt.Fprintf(out, "%-13s%s\n", field.name+":", v)
	}

	return nil
}
