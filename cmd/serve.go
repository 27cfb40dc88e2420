package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/codepath/internal/progress"
	"github.com/abhisek/codepath/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides CODEPATH_ADDR env var)")
}

// runServe opens the store, seeds the curriculum on first start, and serves
// until interrupted.
func runServe(cmd *cobra.Command) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	installed, err := st.Curriculum().Version(ctx)
	if err != nil {
		return err
	}
	if installed == "" {
		if _, err := seedCurriculum(ctx, st, cfg.CurriculumPath, false, log); err != nil {
			return fmt.Errorf("seed curriculum: %w", err)
		}
	}

	svc := progress.NewService(progress.Repos{
		Lessons:   st.Lessons(),
		Questions: st.Questions(),
		Users:     st.Users(),
		Progress:  st.Progress(),
	}, progress.Options{
		Location:        cfg.Location,
		LeaderboardSize: cfg.LeaderboardSize,
		Logger:          log,
	})

	srv := server.New(svc, server.Options{
		Env:             cfg.Env,
		AllowedOrigins:  cfg.AllowedOrigins,
		Ping:            st.Ping,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          log,
	})
	return srv.Run(ctx, cfg.Addr)
}
