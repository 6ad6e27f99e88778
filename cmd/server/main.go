package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/remotehub/internal/infrastructure/config"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/logging"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/server"
)

const usage = `usage: server [flags] [start|stop|status]

  start   run the hub in the foreground (default)
  stop    stop a running hub and any bridges left in the session port range
  status  print whether the hub is running and list its sessions

flags:
`

func main() {
	port := flag.Int("port", 0, "Control-plane port (overrides CLAUDE_REMOTE_HUB_PORT)")
	dev := flag.Bool("dev", false, "Development logging (console, debug level)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	cfg.Resolve()

	// stop and status only log with -dev
	cliLogger := logging.NewNop()
	if *dev {
		cliLogger = logging.NewDevelopment()
	}

	cmd := flag.Arg(0)
	switch cmd {
	case "", "start":
		err = runStart(cfg)
	case "stop":
		err = runStop(cfg, cliLogger)
	case "status":
		err = runStatus(cfg, cliLogger)
	default:
		flag.Usage()
		os.Exit(2)
	}
	_ = cliLogger.Close()
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func runStart(cfg *config.Config) error {
	if missing := cfg.CheckDependencies(); len(missing) > 0 {
		return errors.New(config.FormatMissing(missing))
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		log.Println("Stopping Claude Remote Hub...")
		return srv.Close()
	case err := <-errChan:
		_ = srv.Close()
		return err
	}
}

func runStop(cfg *config.Config, logger *logging.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	services, err := server.NewServices(cfg, runner.New(), nil, logger.Logger)
	if err != nil {
		return err
	}

	pid, err := services.HubPID(ctx)
	if err != nil {
		return err
	}
	if pid == 0 {
		fmt.Println("Claude Remote Hub is not running")
	} else {
		if err := terminateHub(pid); err != nil {
			return fmt.Errorf("failed to signal hub (pid %d): %w", pid, err)
		}
		fmt.Printf("Claude Remote Hub stopped (PID %d)\n", pid)
	}

	// orphaned bridges outlive a hub that was killed without cleanup
	return services.Launcher.StopBridges(ctx)
}

func runStatus(cfg *config.Config, logger *logging.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	services, err := server.NewServices(cfg, runner.New(), nil, logger.Logger)
	if err != nil {
		return err
	}

	pid, err := services.HubPID(ctx)
	if err != nil {
		return err
	}
	if pid == 0 {
		fmt.Println("Claude Remote Hub is stopped")
		return nil
	}
	fmt.Printf("Claude Remote Hub running (PID %d, port %d)\n", pid, cfg.Server.Port)

	sessions, err := services.Registry.List(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("  No active sessions")
		return nil
	}
	for _, s := range sessions {
		active := "-"
		if s.LastActivity > 0 {
			active = time.Unix(s.LastActivity, 0).Format("2006-01-02 15:04")
		}
		fmt.Printf("  [%s] %s (port %d, %s, %s)\n", s.Status, s.Name, s.Port, s.WorkingDirectory, active)
	}
	return nil
}
