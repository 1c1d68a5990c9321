package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/settings"
	"github.com/unkn0wn-root/settings/app"
	"github.com/unkn0wn-root/settings/config"
)

// cli holds what every subcommand shares. It is filled in PersistentPreRunE
// and released by execute.
type cli struct {
	configPath string
	app        *app.App
	log        settings.Logger
	releaseLog func() error
}

// execute runs one command line and releases everything it opened,
// whether or not the command succeeded.
func execute(ctx context.Context, args []string, out io.Writer) (err error) {
	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(out)
	defer func() {
		if cerr := c.close(ctx); err == nil {
			err = cerr
		}
	}()
	return root.ExecuteContext(ctx)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "settingsctl",
		Short: "settingsctl reads and writes persistent application settings",
		Long: `settingsctl reads and writes persistent application settings
stored in a database table or a redis key store, optionally through a cache.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to the configuration file")

	root.AddCommand(
		newGetCmd(c),
		newSetCmd(c),
		newHasCmd(c),
		newForgetCmd(c),
		newPutCmd(c),
		newIncrCmd(c, 1),
		newIncrCmd(c, -1),
		newMigrateCmd(c),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	if !needsApp(cmd) {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.log, c.releaseLog, err = app.NewSettingsLogger(cfg.Log); err != nil {
		return err
	}

	c.app, err = app.New(cmd.Context(), cfg, app.Options{Logger: c.log})
	if err != nil {
		c.log.Error("startup failed", settings.Fields{"err": err})
		return err
	}
	return nil
}

func (c *cli) close(ctx context.Context) error {
	var err error
	if c.app != nil {
		err = c.app.Close(ctx)
		c.app = nil
	}
	if c.releaseLog != nil {
		_ = c.releaseLog()
		c.releaseLog, c.log = nil, nil
	}
	return err
}

// needsApp is false for cobra's own help and completion commands.
func needsApp(cmd *cobra.Command) bool {
	for p := cmd; p != nil; p = p.Parent() {
		switch p.Name() {
		case "help", "completion":
			return false
		}
	}
	return true
}
