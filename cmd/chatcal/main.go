package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"chatcal/internal/assistant"
	"chatcal/internal/config"
	"chatcal/internal/ics"
	appLog "chatcal/internal/log"
	"chatcal/internal/scheduler"
	"chatcal/internal/store"
	"chatcal/internal/web"
)

const version = "0.1.0"

var (
	cfgPath string
	listen  string
	conf    *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "chatcal",
		Short:             "Natural-language scheduling assistant",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runChat,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "./chatcal.yaml", "Path to config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "chat",
		Short: "Read requests from stdin and answer each one",
		RunE:  runChat,
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the agenda digest",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print today's events and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newAssistant()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.Agenda())
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "import <url>",
		Short: "Fetch a remote iCalendar feed and add its events",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", cfgPath)
		return err
	}
	conf = c
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Debug("effective config",
		"store_path", conf.StorePath,
		"store_format", conf.StoreFormat,
		"timezone", conf.Timezone,
		"listen", conf.Listen,
		"agenda_cron", conf.AgendaCron,
	)
	return nil
}

func newAssistant() (*assistant.Assistant, error) {
	s, err := store.Open(conf)
	if err != nil {
		appLog.Error("failed to open store", err, "path", conf.StorePath)
		return nil, err
	}
	return assistant.New(s, conf.Location(), time.Now), nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	a, err := newAssistant()
	if err != nil {
		return err
	}
	return chatLoop(a, cmd.InOrStdin(), cmd.OutOrStdout())
}

// chatLoop answers one request per input line until EOF.
func chatLoop(a *assistant.Assistant, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Welcome to the AI Scheduling Assistant!")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Enter your request: ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}

		reply, err := a.Process(strings.TrimSpace(sc.Text()))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, reply)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newAssistant()
	if err != nil {
		return err
	}

	events, err := ics.NewFetcher(nil, conf.Location()).Fetch(cmd.Context(), args[0])
	if err != nil {
		appLog.Error("import fetch failed", err)
		return err
	}

	n, err := a.Import(events)
	if err != nil {
		appLog.Error("import stopped", err, "imported", n, "total", len(events))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d events.\n", n)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	if listen != "" {
		conf.Listen = listen
	}

	a, err := newAssistant()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return web.Run(gctx, conf, a)
	})
	if conf.AgendaCron != "" {
		sched := scheduler.New(conf.AgendaCron, conf.Location(), a)
		g.Go(func() error {
			return sched.Start(gctx)
		})
	}

	appLog.Info("chatcal serving", "version", version, "listen", conf.Listen)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("serve stopped with error", err)
		return err
	}
	appLog.Info("chatcal exiting")
	return nil
}
