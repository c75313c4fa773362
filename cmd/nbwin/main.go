// Package main provides the entry point for nbwin, a terminal network
// bandwidth monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/i978sukhoi/nbwin/internal/config"
	"github.com/i978sukhoi/nbwin/internal/logging"
	"github.com/i978sukhoi/nbwin/internal/monitor"
	"github.com/i978sukhoi/nbwin/internal/netif"
	"github.com/i978sukhoi/nbwin/internal/publicip"
	"github.com/i978sukhoi/nbwin/internal/stats"
	"github.com/i978sukhoi/nbwin/internal/ui"
	"github.com/i978sukhoi/nbwin/internal/version"
)

// simpleRounds is how many update cycles simple mode prints before exiting.
const simpleRounds = 5

func main() {
	configPath := flag.String("config", "", "Path to an alternative config file")
	simple := flag.Bool("simple", false, "Print a few update rounds instead of starting the TUI")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info().String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *simple {
		// Simple mode shares the terminal with its own output, so logs
		// go to stderr like any other CLI.
		logging.SetupFromEnv()
		if err := runSimple(ctx, *configPath); err != nil {
			slog.Error("Simple mode failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runDashboard(ctx, *configPath); err != nil {
		slog.Error("Failed to run dashboard", "error", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration. With an explicit path the
// XDG manager is skipped and no default file is written; the returned log
// path is empty in that case.
func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		if err := cfg.Validate(); err != nil {
			return nil, "", fmt.Errorf("config %s: %w", path, err)
		}
		return cfg, "", nil
	}

	manager, err := config.NewManager()
	if err != nil {
		return nil, "", err
	}

	return manager.GetConfig(), manager.GetLogFile(), nil
}

// newSession builds the counter source and a ready monitoring session from
// the configuration.
func newSession(ctx context.Context, cfg *config.Config) (*monitor.Session, netif.Source, error) {
	source, err := netif.NewSource(cfg.Source, stats.RealClock{})
	if err != nil {
		return nil, nil, fmt.Errorf("counter source: %w", err)
	}

	session, err := monitor.NewSession(ctx, source, monitor.Options{
		UpdateInterval: cfg.UpdateInterval(),
		HistorySize:    cfg.HistorySize,
		ScaleFloor:     float64(cfg.ScaleFloorBytes),
		ScaleHeadroom:  cfg.ScaleHeadroom,
	})
	if err != nil {
		return nil, nil, err
	}

	return session, source, nil
}

func newResolver(cfg *config.Config) *publicip.Resolver {
	if !cfg.PublicIP.Enabled {
		return nil
	}

	return publicip.NewResolver(publicip.Options{
		Services: cfg.PublicIP.Services,
		TTL:      cfg.PublicIP.CacheTTL(),
		Timeout:  cfg.PublicIP.Timeout(),
	})
}

func runDashboard(ctx context.Context, configPath string) error {
	cfg, logFile, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file under the state
	// directory instead of stderr.
	if logFile == "" {
		paths, err := config.GetPaths()
		if err != nil {
			return err
		}
		if err := paths.EnsurePaths(); err != nil {
			return err
		}
		logFile = paths.LogFile
	}
	closeLog, err := logging.SetupFile(logFile, logging.LevelFromEnv())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		_ = closeLog()
	}()

	session, source, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Stop()

	slog.Info("Starting nbwin",
		"version", version.Info().Version,
		"interfaces", len(session.Interfaces()),
		"update_interval", cfg.UpdateInterval())

	dashboard := ui.NewDashboard(session, source, ui.Options{
		PollInterval: cfg.PollInterval(),
		Resolver:     newResolver(cfg),
	})

	return dashboard.Run(ctx)
}

// runSimple prints an interface inventory and a handful of update rounds to
// stdout. Useful over plain SSH sessions and for checking what the counter
// source reports without starting the TUI.
func runSimple(ctx context.Context, configPath string) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	session, source, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Stop()

	fmt.Printf("nbwin %s\n\n", version.Info().Version)

	interfaces, err := source.ListInterfaces(ctx)
	if err != nil {
		interfaces = session.Interfaces()
	}
	for _, iface := range interfaces {
		mac := iface.MAC
		if mac == "" {
			mac = "-"
		}
		link := "-"
		if iface.SpeedBits > 0 {
			link = stats.FormatBitRate(iface.SpeedBits)
		}
		fmt.Printf("%3d  %-24s  %-4s  %-8s  %-17s  %-10s  %s\n",
			iface.Index, iface.DisplayName(), ui.InterfaceStatus(iface),
			ui.InterfaceKind(iface), mac, link, ui.JoinAddrs(iface.Addrs))
	}

	if resolver := newResolver(cfg); resolver != nil {
		if addr, err := resolver.Resolve(ctx); err == nil {
			fmt.Printf("\nPublic IP: %s\n", addr)
		} else {
			slog.Warn("Public IP lookup failed", "error", err)
		}
	}

	fmt.Println()
	ticker := time.NewTicker(cfg.UpdateInterval())
	defer ticker.Stop()

	for round := 1; round <= simpleRounds; round++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := session.Tick(ctx); err != nil {
			return err
		}

		fmt.Printf("[%s]\n", stats.FormatDuration(session.Uptime()))
		for _, iface := range session.Interfaces() {
			sample, ok := session.Sample(iface.Index)
			if !ok {
				continue
			}
			fmt.Printf("  %-24s  down %12s   up %12s\n",
				iface.DisplayName(),
				stats.FormatRate(sample.DownloadRate), stats.FormatRate(sample.UploadRate))
		}
	}

	return nil
}
