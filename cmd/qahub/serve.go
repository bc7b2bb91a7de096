package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"qahub/internal/config"
	"qahub/internal/extract"
	"qahub/internal/llm"
	"qahub/internal/prompt"
	"qahub/internal/server"
	"qahub/internal/session"
	"qahub/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the QA Hub HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a)
		},
	}
}

func runServe(ctx context.Context, a *app) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	state := session.New(st, client, newPromptBuilder(cfg), extract.New(cfg.ExtractOptions()))
	if err := state.Load(); err != nil {
		return err
	}

	read, write := cfg.ServerTimeouts()
	srv := server.New(state, server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  read,
		WriteTimeout: write,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Extractor tuning (marker, denylist) and the model reload without
	// a restart; provider and endpoint changes still need one.
	watcher, err := config.NewWatcher(a.cfgPath, func(next *config.Config) {
		state.Reconfigure(newPromptBuilder(next), extract.New(next.ExtractOptions()))
		if m, ok := client.(interface{ SetModel(string) }); ok && next.LLM.Model != "" {
			m.SetModel(next.LLM.Model)
		}
		a.log.Infow("config reloaded", "path", a.cfgPath)
	})
	if err != nil {
		a.log.Warnw("config watcher unavailable, hot reload disabled", "error", err)
	} else {
		if err := watcher.Start(ctx); err != nil {
			a.log.Warnw("config watcher failed to start", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Infow("server starting", "addr", cfg.Server.Addr,
			"provider", cfg.LLM.Provider, "backend", cfg.Store.Backend)
		return srv.ListenAndServe(ctx)
	})
	g.Go(func() error {
		// Periodic flush so a crash loses at most a few minutes of
		// edits on the file-backed stores.
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := state.Save(); err != nil {
					a.log.Warnw("autosave failed", "error", err)
				}
			}
		}
	})

	err = g.Wait()
	if saveErr := state.Save(); saveErr != nil {
		a.log.Errorw("failed to save session on shutdown", "error", saveErr)
		if err == nil {
			err = saveErr
		}
	}
	return err
}

func newPromptBuilder(cfg *config.Config) *prompt.Builder {
	return prompt.New(prompt.Options{
		Marker:     cfg.Extract.Marker,
		Sentinel:   cfg.Extract.Sentinel,
		CaseTarget: cfg.Extract.CaseTarget,
	})
}
