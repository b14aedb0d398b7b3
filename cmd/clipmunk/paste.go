package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmunk/internal/bridge"
	"go.klb.dev/clipmunk/internal/client"
	"go.klb.dev/clipmunk/internal/services"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Post a paste keystroke (Cmd+V) to the foreground application",
		Long: `Asks the daemon to synthesize Cmd+V (Ctrl+V outside macOS). With
--template N the "Clipmunk - Paste N" service runs first, so template N is
pasted.

Keystroke failures are not reported; the command succeeds whenever the
daemon answered.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runPaste(v) },
	}

	cmd.Flags().Int("template", 0, "template slot (1-3) to place on the pasteboard first")
	addClientFlags(cmd)

	return cmd
}

func runPaste(v *viper.Viper) error {
	var service string
	if slot := v.GetString("template"); slot != "0" {
		index, err := parseSlot(slot)
		if err != nil {
			return err
		}
		service = services.PasteServiceName(index)
	}

	return withClient(v, func(ctx context.Context, c *client.Client) error {
		if service != "" {
			if err := c.Invoke(ctx, service); err != nil {
				return err
			}
		}
		_, err := c.Call(ctx, bridge.ClipboardChannel, bridge.MethodSimulatePaste, nil)
		return err
	})
}
