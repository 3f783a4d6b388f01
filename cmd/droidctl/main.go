// droidctl is a developer tool for inspecting V2 droid frames: decode a
// captured frame into its fields, build a frame from parts, or compute
// a body checksum.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/starbots/droidlink/protocol"
)

var rootCmd = &cobra.Command{
	Use:           "droidctl",
	Short:         "Inspect and build V2 droid protocol frames",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <hex-frame>",
	Short: "Decode a captured frame into its fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		frame, err := parseHex(args[0])
		if err != nil {
			return err
		}
		pkt, err := protocol.Decode(frame)
		if err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "flags:     0x%02X\n", uint8(pkt.Flags))
		if pkt.Flags&protocol.FlagHasTargetID != 0 {
			fmt.Fprintf(out, "target:    0x%02X\n", pkt.TargetID)
		}
		if pkt.Flags&protocol.FlagHasSourceID != 0 {
			fmt.Fprintf(out, "source:    0x%02X\n", pkt.SourceID)
		}
		fmt.Fprintf(out, "device:    0x%02X\n", pkt.DeviceID)
		fmt.Fprintf(out, "command:   0x%02X\n", pkt.CommandID)
		fmt.Fprintf(out, "seq:       %d\n", pkt.Seq)
		if pkt.IsResponse() {
			fmt.Fprintf(out, "error:     %s (0x%02X)\n", pkt.Err, uint8(pkt.Err))
		}
		if pkt.IsNotification() {
			fmt.Fprintln(out, "kind:      notification")
		} else if pkt.IsResponse() {
			fmt.Fprintln(out, "kind:      response")
		} else {
			fmt.Fprintln(out, "kind:      command")
		}
		fmt.Fprintf(out, "data:      % X\n", pkt.Data)
		return nil
	},
}

var (
	encDevice   uint8
	encCommand  uint8
	encSeq      uint8
	encTarget   int
	encSource   int
	encData     string
	encRequest  bool
	encResponse bool
	encError    uint8
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Build a frame from fields and print it as hex",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseHex(encData)
		if err != nil {
			return err
		}
		pkt := protocol.Packet{
			DeviceID:  encDevice,
			CommandID: encCommand,
			Seq:       encSeq,
			Data:      data,
		}
		if encRequest {
			pkt.Flags |= protocol.FlagRequestsResponse
		}
		if encResponse {
			pkt.Flags |= protocol.FlagIsResponse
			pkt.Err = protocol.ErrorCode(encError)
		}
		if encTarget >= 0 {
			pkt.Flags |= protocol.FlagHasTargetID
			pkt.TargetID = uint8(encTarget)
		}
		if encSource >= 0 {
			pkt.Flags |= protocol.FlagHasSourceID
			pkt.SourceID = uint8(encSource)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "% X\n", pkt.Encode())
		return nil
	},
}

var checksumCmd = &cobra.Command{
	Use:   "checksum <hex-body>",
	Short: "Compute the body checksum of unescaped header+data bytes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := parseHex(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "0x%02X\n", protocol.Checksum(body))
		return nil
	},
}

// parseHex accepts "8D0A..." as well as "8D 0A ..." and "8d:0a:...".
func parseHex(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', ',', '\t', '\n':
			return -1
		}
		return r
	}, s)
	if clean == "" {
		return nil, nil
	}
	out, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("bad hex input: %w", err)
	}
	return out, nil
}

func init() {
	encodeCmd.Flags().Uint8Var(&encDevice, "device", 0, "device id")
	encodeCmd.Flags().Uint8Var(&encCommand, "command", 0, "command id")
	encodeCmd.Flags().Uint8Var(&encSeq, "seq", 0, "sequence number")
	encodeCmd.Flags().IntVar(&encTarget, "target", -1, "target id (omit field if unset)")
	encodeCmd.Flags().IntVar(&encSource, "source", -1, "source id (omit field if unset)")
	encodeCmd.Flags().StringVar(&encData, "data", "", "payload bytes as hex")
	encodeCmd.Flags().BoolVar(&encRequest, "request-response", false, "set the requests-response flag")
	encodeCmd.Flags().BoolVar(&encResponse, "response", false, "build a response frame")
	encodeCmd.Flags().Uint8Var(&encError, "error", 0, "error byte for response frames")

	rootCmd.AddCommand(decodeCmd, encodeCmd, checksumCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "droidctl:", err)
		os.Exit(1)
	}
}
