package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/indicesp/indicesp/internal/server"
	"github.com/indicesp/indicesp/internal/utils"
	"github.com/indicesp/indicesp/pkg/storage"
	"github.com/indicesp/indicesp/pkg/submission"
	"github.com/indicesp/indicesp/website/pkg/core"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Índice SP web server and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetBool("seed")

		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		db, err := storage.OpenMemory()
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := submission.NewService(submission.Config{
			Store:   db,
			Catalog: cat,
			Log:     utils.Log,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if seed {
			subs, err := svc.Seed(ctx)
			if err != nil {
				return err
			}
			utils.Log.Infof("Seeded %d demonstration contributions", len(subs))
		}

		site, err := core.New(core.Config{
			Submissions: svc,
			Queue:       db,
			Domain:      viper.GetString("server.domain"),
			Log:         utils.Log,
		})
		if err != nil {
			return err
		}

		srv, err := server.New(server.Config{
			Submissions:    svc,
			Queue:          db,
			Pages:          site.Handler(),
			Log:            utils.Log,
			AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		})
		if err != nil {
			return err
		}

		return srv.Start(ctx, viper.GetString("server.listen"))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("domain", "localhost", "Domain name for sitemap/robots.txt")
	serveCmd.Flags().Bool("seed", false, "Queue the demonstration contributions on start")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.domain", serveCmd.Flags().Lookup("domain"))
}
