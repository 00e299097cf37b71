// Command scpfw-sim is a host-runnable model of the system-control
// firmware core: it loads a board configuration, assembles a Firmware
// wired to simulated drivers, and drives it as a standalone scenario
// player instead of cross-compiling for a specific SoC (spec.md §1's
// "per-SoC register offset tables" are explicitly out of scope; this tool
// exercises the state machine, CSS coordinator, and mailbox protocol
// without them).
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/socfw/scp/internal/config"
	"github.com/socfw/scp/internal/logging"
)

func main() {
	var (
		boardPath string
		steps     int
		sendSpecs []string
	)

	root := &cobra.Command{
		Use:   "scpfw-sim",
		Short: "System-control firmware core simulator",
		Long: `scpfw-sim boots a simulated system-control firmware core against a
board configuration file, optionally delivers one or more mailbox
requests from a simulated AP client, then runs the state machine for a
fixed number of iterations and reports the final power state.

Examples:
  scpfw-sim --board board.yaml --steps 5
  scpfw-sim --board board.yaml --send 0:1: --send 0:5:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(boardPath, steps, sendSpecs)
		},
	}

	root.Flags().StringVar(&boardPath, "board", "", "path to a board configuration YAML file (required)")
	root.Flags().IntVar(&steps, "steps", 5, "number of state machine iterations to run")
	root.Flags().StringArrayVar(&sendSpecs, "send", nil, "client:command:payload_hex mailbox request to deliver before stepping (repeatable)")
	_ = root.MarkFlagRequired("board")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(boardPath string, steps int, sendSpecs []string) error {
	cfg, err := config.Load(boardPath)
	if err != nil {
		return err
	}

	log := logging.New(os.Stderr)
	log.Info("loaded board", map[string]any{"board": cfg.Name, "clusters": len(cfg.Clusters)})

	b, err := buildBoard(cfg, log)
	if err != nil {
		return err
	}

	b.fw.Run(true)
	log.Info("boot complete", map[string]any{"state": fmt.Sprintf("%#x", b.fw.Machine().Current())})

	for _, spec := range sendSpecs {
		client, cmdNum, payload, err := parseSendSpec(spec)
		if err != nil {
			return err
		}
		reply, err := b.deliver(client, cmdNum, payload)
		if err != nil {
			return err
		}
		log.Info("mailbox reply", map[string]any{
			"client": client, "command": cmdNum, "status": reply.Status, "size": reply.Size,
		})
	}

	b.fw.RunLoop(steps)

	fmt.Printf("final state: %#02x\n", uint8(b.fw.Machine().Current()))
	return nil
}

// parseSendSpec decodes "client:command:payload_hex", e.g. "0:5:00" to
// request SET_SYS_POWER's SHUTDOWN state from the secure client. The
// payload segment may be omitted for zero-payload commands.
func parseSendSpec(spec string) (client uint8, cmd uint8, payload []byte, err error) {
	fields := strings.SplitN(spec, ":", 3)
	if len(fields) < 2 {
		return 0, 0, nil, fmt.Errorf("scpfw-sim: --send %q: expected client:command[:payload_hex]", spec)
	}

	c, e := strconv.ParseUint(fields[0], 10, 8)
	if e != nil {
		return 0, 0, nil, fmt.Errorf("scpfw-sim: --send %q: bad client id: %w", spec, e)
	}
	cmdVal, e := strconv.ParseUint(fields[1], 0, 8)
	if e != nil {
		return 0, 0, nil, fmt.Errorf("scpfw-sim: --send %q: bad command number: %w", spec, e)
	}

	if len(fields) == 3 && fields[2] != "" {
		payload, e = hex.DecodeString(fields[2])
		if e != nil {
			return 0, 0, nil, fmt.Errorf("scpfw-sim: --send %q: bad payload hex: %w", spec, e)
		}
	}

	return uint8(c), uint8(cmdVal), payload, nil
}
