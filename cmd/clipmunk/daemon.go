package main

import (
	"fmt"
	"slices"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// newSystemService describes "clipmunk serve" as a per-user service
// (launchd agent on macOS, systemd --user unit on Linux).
func newSystemService(prg service.Interface, args []string) (service.Service, error) {
	cfg := &service.Config{
		Name:        "clipmunk",
		DisplayName: "Clipmunk",
		Description: "Paste templates, system services and paste keystrokes for the clipmunk UI",
		Arguments:   append([]string{"serve"}, args...),
		Option: service.KeyValue{
			"UserService": true,
			"KeepAlive":   true,
			"RunAtLoad":   true,
		},
	}
	svc, err := service.New(prg, cfg)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return svc, nil
}

func newDaemonCmd() *cobra.Command {
	actions := append(slices.Clone(service.ControlAction[:]), "status")

	cmd := &cobra.Command{
		Use:       "daemon {install|uninstall|start|stop|restart|status}",
		Short:     "Manage clipmunk as a per-user background service",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: actions,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, _ := cmd.Flags().GetString("config")
			var extra []string
			if config != "" {
				extra = []string{"--config", config}
			}
			svc, err := newSystemService(&daemon{}, extra)
			if err != nil {
				return err
			}
			if args[0] == "status" {
				return printServiceStatus(svc)
			}
			if err := service.Control(svc, args[0]); err != nil {
				return err
			}
			fmt.Printf("clipmunk: %s ok\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("config", "", "config file passed to the installed service")
	return cmd
}

func printServiceStatus(svc service.Service) error {
	st, err := svc.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	switch st {
	case service.StatusRunning:
		fmt.Println("running")
	case service.StatusStopped:
		fmt.Println("stopped")
	default:
		fmt.Println("unknown")
	}
	return nil
}
