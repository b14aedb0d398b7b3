package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmunk/internal/client"
)

func newCallCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "call <channel> <method> [json-args]",
		Short: "Call a channel method and print the JSON result",
		Example: `  clipmunk call templates syncTemplates '{"paste_template_0":"Hello"}'
  clipmunk call clipboard simulatePaste`,
		Args:    cobra.RangeArgs(2, 3),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			var callArgs any
			if len(args) == 3 {
				if err := json.Unmarshal([]byte(args[2]), &callArgs); err != nil {
					return fmt.Errorf("args: %w", err)
				}
			}
			return withClient(v, func(ctx context.Context, c *client.Client) error {
				res, err := c.Call(ctx, args[0], args[1], callArgs)
				if err != nil {
					return err
				}
				if len(res) == 0 {
					res = json.RawMessage("null")
				}
				fmt.Println(string(res))
				return nil
			})
		},
	}
	addClientFlags(cmd)
	return cmd
}
