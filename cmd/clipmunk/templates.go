package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipmunk/internal/bridge"
	"go.klb.dev/clipmunk/internal/client"
	"go.klb.dev/clipmunk/internal/ipc"
	"go.klb.dev/clipmunk/internal/settings"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Sync and inspect the paste templates",
	}
	cmd.AddCommand(newTemplatesSyncCmd(), newTemplatesSetCmd(), newTemplatesListCmd())
	return cmd
}

func newTemplatesSyncCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "sync key=value...",
		Short: "Write settings entries through the templates channel",
		Long: `Sends one syncTemplates call with every key=value pair, exactly as the
UI does. Template slots use the keys paste_template_0..2.

  clipmunk templates sync paste_template_0='Kind regards,' paste_template_1=`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			entries, err := parseAssignments(args)
			if err != nil {
				return err
			}
			return syncTemplates(v, entries)
		},
	}
	addClientFlags(cmd)
	return cmd
}

func newTemplatesSetCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     "set <slot> <text|->",
		Short:   "Set template slot 1-3 (\"-\" reads the text from stdin)",
		Args:    cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			index, err := parseSlot(args[0])
			if err != nil {
				return err
			}
			text := args[1]
			if text == "-" {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}
			return syncTemplates(v, map[string]string{settings.TemplateKey(index): text})
		},
	}
	addClientFlags(cmd)
	return cmd
}

func syncTemplates(v *viper.Viper, entries map[string]string) error {
	return withClient(v, func(ctx context.Context, c *client.Client) error {
		_, err := c.Call(ctx, bridge.TemplatesChannel, bridge.MethodSyncTemplates, entries)
		return err
	})
}

func newTemplatesListCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the template slots from the settings database",
		Long: `Reads the template slots straight from the settings database, without
going through the daemon. A daemon started with --ephemeral keeps its
templates in memory only; they are not visible here.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			path := v.GetString("db")
			if path == "" {
				var err error
				if path, err = settings.DefaultPath(); err != nil {
					return err
				}
			}
			if note := storeNotice(ipc.IsRunning(), path); note != "" {
				_, _ = fmt.Fprintln(os.Stderr, note)
			}
			store, err := settings.OpenSQLite(path)
			if err != nil {
				return err
			}
			defer store.Close()
			return printTemplates(os.Stdout, store, v.GetBool("json"))
		},
	}
	cmd.Flags().String("db", "", "settings database path (default: <user config dir>/clipmunk/settings.db)")
	cmd.Flags().Bool("json", false, "output JSON")
	addConfigFlag(cmd)
	return cmd
}

func printTemplates(w io.Writer, store settings.Store, jsonOut bool) error {
	slots := make([]string, settings.SlotCount)
	for i := range slots {
		v, err := settings.Template(store, i)
		if err != nil {
			return err
		}
		slots[i] = v
	}

	if jsonOut {
		out := make(map[string]string, len(slots))
		for i, s := range slots {
			out[settings.TemplateKey(i)] = s
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "SLOT\tKEY\tCONTENT\n")
	for i, s := range slots {
		content := strconv.Quote(s)
		if s == "" {
			content = "(empty)"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, settings.TemplateKey(i), content)
	}
	return tw.Flush()
}

// storeNotice warns that the listing shows the database file, which is not
// what a running --ephemeral daemon serves.
func storeNotice(daemonRunning bool, path string) string {
	if !daemonRunning {
		return ""
	}
	return fmt.Sprintf("note: showing %s; a daemon started with --ephemeral does not write there", path)
}

// parseAssignments turns key=value arguments into a map. The value may be
// empty; the key may not.
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, val, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid assignment %q (want key=value)", a)
		}
		out[k] = val
	}
	return out, nil
}

// parseSlot converts a 1-based slot number to a slot index.
func parseSlot(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > settings.SlotCount {
		return 0, fmt.Errorf("slot must be 1-%d, got %q", settings.SlotCount, s)
	}
	return n - 1, nil
}
