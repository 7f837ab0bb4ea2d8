package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nconklindev/jsonxl/internal/config"
	"github.com/nconklindev/jsonxl/internal/converter"
	"github.com/nconklindev/jsonxl/internal/headless"
	"github.com/nconklindev/jsonxl/internal/types"
	"github.com/nconklindev/jsonxl/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("jsonxl %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (default ~/.config/jsonxl/config.toml)")
	url := flag.String("url", "", "API URL that returns JSON")
	output := flag.String("out", "", "output spreadsheet path")
	timeout := flag.String("timeout", "", "request timeout, e.g. 60s")
	logFile := flag.String("log", "", "write logs to this file")
	batch := flag.Bool("headless", false, "run one conversion without the interactive UI")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsonxl: load config: %v\n", err)
		return 1
	}

	if *url != "" {
		cfg.URL = strings.TrimSpace(*url)
	}
	if *output != "" {
		cfg.OutputPath = strings.TrimSpace(*output)
	}
	if *timeout != "" {
		d, err := config.ParseTimeout(*timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jsonxl: %v\n", err)
			return 2
		}
		cfg.Timeout = d
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "jsonxl")
		if err != nil {
			fmt.Fprintf(os.Stderr, "jsonxl: open log file: %v\n", err)
			return 1
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *batch {
		task := converter.NewTask(converter.Options{Timeout: cfg.Timeout, SheetName: cfg.SheetName})
		req := types.ConversionRequest{URL: cfg.URL, OutputPath: cfg.OutputPath}
		if err := headless.Run(ctx, task, req, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "jsonxl: %v\n", err)
			return 1
		}
		return 0
	}

	if err := ui.Run(ctx, cfg); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}
