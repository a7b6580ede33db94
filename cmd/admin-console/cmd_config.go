package main

import (
	"fmt"
	"sort"
	"strings"

	"admin-console-go/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Show or change the configuration file"}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if a.opts.jsonOutput {
				shown := *a.cfg
				if shown.Storage.RedisPassword != "" {
					shown.Storage.RedisPassword = "***"
				}
				return printJSON(a.out(cmd), shown)
			}
			path := a.cm.Path()
			if path == "" {
				path = "(defaults)"
			}
			table := newTable(a.out(cmd), "Setting", "Value")
			table.AppendBulk([][]string{
				{"Config file", path},
				{"API base URL", a.cfg.API.BaseURL},
				{"Endpoints", a.cfg.API.Endpoints.String()},
				{"Request timeout", a.cfg.API.RequestTimeout.String()},
				{"Refresh timeout", a.cfg.API.RefreshTimeout.String()},
				{"Refresh ahead", a.cfg.API.RefreshAhead.String()},
				{"Storage backend", a.cfg.Storage.Backend},
				{"Storage dir", a.cfg.Storage.Dir},
			})
			table.Render()
			return nil
		},
	})

	settable := map[string]func(*config.FileConfig, string){
		"api-url":         func(fc *config.FileConfig, v string) { fc.APIBaseURL = v },
		"storage-backend": func(fc *config.FileConfig, v string) { fc.StorageBackend = v },
		"storage-dir":     func(fc *config.FileConfig, v string) { fc.StorageDir = v },
		"redis-addr":      func(fc *config.FileConfig, v string) { fc.RedisAddr = v },
		"log-level":       func(fc *config.FileConfig, v string) { fc.LogLevel = v },
	}
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Persist one setting to the configuration file",
		Long:      "Keys: " + strings.Join(keys, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			apply, ok := settable[args[0]]
			if !ok {
				return fmt.Errorf("unknown setting %q", args[0])
			}
			if a.cm.Path() == "" {
				return fmt.Errorf("no configuration file in use; pass --config")
			}
			if err := a.cm.UpdateConfig(func(fc *config.FileConfig) { apply(fc, args[1]) }); err != nil {
				return err
			}
			success(a.out(cmd), "%s saved to %s", args[0], a.cm.Path())
			return nil
		},
	})
	return cmd
}
