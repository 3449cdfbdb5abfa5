package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/re3facet/pkg/observability"
	"github.com/matzehuels/re3facet/pkg/observability/prom"
	"github.com/matzehuels/re3facet/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags runFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the subject tree and the repository table over HTTP",
		Long: `Serve runs the pipeline once and serves the result read-only:

  GET /api/tree                 checkbox-tree JSON (?counts=true)
  GET /api/outline              Markdown outline
  GET /api/subjects             subject frequencies (?selected=1-01,2)
  GET /api/repositories         repository records (?selected=1-01,2)
  GET /api/repositories/{id}    one record
  GET /metrics                  Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			prom.New(reg).Register()
			defer observability.Reset()

			result, err := c.run(ctx, &flags)
			if err != nil {
				return err
			}
			printStats(result.Stats, result.CacheHit)

			if addr == "" {
				addr = c.Config.Server.Addr
			}
			srv := server.New(result,
				server.WithLogger(c.Logger),
				server.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
			)
			printInfo("Listening on %s", StyleLink.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	return cmd
}
