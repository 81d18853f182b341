// Package main contains the operational CLI for the content directory's
// persistence core: bringing a database's schema up to date, browsing
// the object tree, and editing runtime config values, all against a
// live MySQL connection. It uses cobra for command-line parsing.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TaniGit/gerbera/internal/config"
	"github.com/TaniGit/gerbera/internal/core"
	dialectmysql "github.com/TaniGit/gerbera/internal/dialect/mysql"
	"github.com/TaniGit/gerbera/internal/driver/mysqldriver"
	"github.com/TaniGit/gerbera/internal/mimeiface"
	"github.com/TaniGit/gerbera/internal/store"
)

type globalFlags struct {
	dsn        string
	configFile string
	timeout    int
}

func main() {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "cdsstore",
		Short: "Content directory persistence core CLI",
	}
	rootCmd.PersistentFlags().StringVar(&flags.dsn, "dsn", "", "MySQL connection string (required)")
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to TOML config file (built-in defaults if omitted)")
	rootCmd.PersistentFlags().IntVar(&flags.timeout, "timeout", 30, "Connection timeout in seconds")

	rootCmd.AddCommand(initCmd(flags))
	rootCmd.AddCommand(migrateCmd(flags))
	rootCmd.AddCommand(browseCmd(flags))
	rootCmd.AddCommand(configCmd(flags))
	rootCmd.AddCommand(autoscanCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore(flags *globalFlags) (*store.Store, func(), error) {
	if flags.dsn == "" {
		return nil, nil, fmt.Errorf("--dsn is required")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	cfg := config.Default()
	if flags.configFile != "" {
		cfg, err = config.Load(flags.configFile)
		if err != nil {
			_ = logger.Sync()
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flags.timeout)*time.Second)
	defer cancel()

	drv, err := mysqldriver.Open(ctx, mysqldriver.Options{
		DSN:            flags.dsn,
		ConnectTimeout: time.Duration(flags.timeout) * time.Second,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	dialect := dialectmysql.New(cfg.ResourceAttributes())
	mime := mimeiface.NewExtensionTable(nil)
	s := store.New(dialect, drv, cfg, mime, logger)

	cleanup := func() {
		_ = drv.Close()
		_ = logger.Sync()
	}
	return s, cleanup, nil
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the schema if absent, or migrate it, to the version this binary expects",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, cleanup, err := openStore(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.Init(); err != nil {
				return fmt.Errorf("init: %w", err)
			}
			fmt.Println("schema ready")
			return nil
		},
	}
}

func migrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate an existing database to the version this binary expects",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, cleanup, err := openStore(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.Init(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("migration complete")
			return nil
		},
	}
}

func browseCmd(flags *globalFlags) *cobra.Command {
	var parentID int
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List the direct children of an object",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, cleanup, err := openStore(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			children, err := s.BrowseChildren(parentID)
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			for _, obj := range children {
				kind := "item"
				if obj.IsContainer() {
					kind = "container"
				}
				fmt.Printf("%d\t%s\t%s\t%s\n", obj.ID, kind, obj.UpnpClass, obj.Title)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&parentID, "parent", core.RootID, "Id of the parent object to list children of")
	return cmd
}

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write runtime config values",
	}
	cmd.AddCommand(configGetCmd(flags), configSetCmd(flags), configListCmd(flags))
	return cmd
}

func configGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <item> <key>",
		Short: "Print one config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			s, cleanup, err := openStore(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			values, err := s.GetConfigValues()
			if err != nil {
				return fmt.Errorf("get config values: %w", err)
			}
			for _, v := range values {
				if v.Item == args[0] && v.Key == args[1] {
					fmt.Println(v.Value)
					return nil
				}
			}
			return fmt.Errorf("no value for item %q key %q", args[0], args[1])
		},
	}
}

func configSetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <item> <key> <value>",
		Short: "Upsert one config value",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			s, cleanup, err := openStore(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.UpdateConfigValue(args[0], args[1], args[2], core.ConfigChanged); err != nil {
				return fmt.Errorf("set config value: %w", err)
			}
			return nil
		},
	}
}

func configListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored config value",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, cleanup, err := openStore(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			values, err := s.GetConfigValues()
			if err != nil {
				return fmt.Errorf("get config values: %w", err)
			}
			sort.Slice(values, func(i, j int) bool {
				if values[i].Item != values[j].Item {
					return values[i].Item < values[j].Item
				}
				return values[i].Key < values[j].Key
			})
			for _, v := range values {
				fmt.Printf("%s\t%s\t%s\t%s\n", v.Item, v.Key, v.Value, v.Status)
			}
			return nil
		},
	}
}

func autoscanCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoscan",
		Short: "Inspect autoscan directories",
	}
	cmd.AddCommand(autoscanListCmd(flags))
	return cmd
}

func autoscanListCmd(flags *globalFlags) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List autoscan directories for a scan mode",
		RunE: func(_ *cobra.Command, _ []string) error {
			s, cleanup, err := openStore(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := s.GetAutoscanList(core.ScanMode(mode))
			if err != nil {
				return fmt.Errorf("get autoscan list: %w", err)
			}
			for _, a := range list {
				fmt.Printf("%d\t%s\t%s\trecursive=%t\tpersistent=%t\n",
					a.ObjectID, a.ScanMode, a.Level, a.Recursive, a.Persistent)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(core.ScanModeTimed), "Scan mode: timed or inotify")
	return cmd
}
