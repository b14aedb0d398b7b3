package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmunk/internal/client"
	"go.klb.dev/clipmunk/internal/services"
)

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "List or invoke the registered system services",
		Long: `Services are named actions such as "Clipmunk - Paste 1". On macOS,
bind one to the Services menu with a Quick Action running:

  clipmunk service invoke "Clipmunk - Paste 1"`,
	}

	lv := viper.New()
	list := &cobra.Command{
		Use:     "list",
		Short:   "List registered services",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, lv) },
		RunE: func(_ *cobra.Command, _ []string) error {
			return withClient(lv, func(ctx context.Context, c *client.Client) error {
				ids, err := c.Services(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Println(id)
				}
				return nil
			})
		},
	}
	addClientFlags(list)

	iv := viper.New()
	invoke := &cobra.Command{
		Use:     "invoke <service|slot>",
		Short:   "Invoke a service by name, or a paste service by slot number",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, iv) },
		RunE: func(_ *cobra.Command, args []string) error {
			id := serviceID(args[0])
			return withClient(iv, func(ctx context.Context, c *client.Client) error {
				return c.Invoke(ctx, id)
			})
		},
	}
	addClientFlags(invoke)

	cmd.AddCommand(list, invoke)
	return cmd
}

// serviceID maps a bare slot number to its paste service name.
func serviceID(arg string) string {
	if _, err := strconv.Atoi(arg); err == nil {
		if index, err := parseSlot(arg); err == nil {
			return services.PasteServiceName(index)
		}
	}
	return arg
}
