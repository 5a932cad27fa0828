package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gre/shattered/pkg/archive"
	"github.com/gre/shattered/pkg/pipeline"
	"github.com/gre/shattered/pkg/server"
)

// serverKeyPrefix scopes server cache keys away from CLI runs.
const serverKeyPrefix = "server:"

type serveOpts struct {
	addr      string
	timeout   time.Duration
	noCache   bool
	noArchive bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve plots over HTTP",
		Long: `Serve starts an HTTP server that renders plots on demand:

  GET /plots/{seed}.svg?palette=forest&sun
  GET /plots/{seed}/tree.svg
  GET /palettes

The cache backend comes from the config file; use redis to share renders
between instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	f.DurationVar(&opts.timeout, "timeout", server.DefaultTimeout, "per-request timeout")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&opts.noArchive, "no-archive", false, "do not archive generated plots")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	runner, err := c.newScopedRunner(ctx, opts.noCache, serverKeyPrefix)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer runner.Close()

	reg, err := c.Config.Registry()
	if err != nil {
		return err
	}

	var arch *archive.Archive
	if !opts.noArchive {
		arch, err = c.openArchive()
		if err != nil {
			return err
		}
		if arch != nil {
			defer arch.Close()
		}
	}

	var defaults pipeline.Options
	c.Config.Apply(&defaults)

	addr := opts.addr
	if addr == "" {
		addr = c.Config.Server.Addr
	}

	srv := server.New(server.Config{
		Runner:   runner,
		Defaults: defaults,
		Palettes: reg,
		Archive:  arch,
		Logger:   c.Logger,
		Timeout:  opts.timeout,
	})

	printInfo("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))
	printDetail("Cache: %s", c.Config.Cache.Backend)
	return srv.ListenAndServe(ctx, addr)
}

// displayAddr turns a bare port like ":8080" into a browsable host.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
