package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/codescoop/cpediscover/internal/config"
	"github.com/codescoop/cpediscover/internal/pkg/logger"
	"github.com/codescoop/cpediscover/pkg/cpediscovery"
)

func main() {
	var (
		configPath   = flag.String("config", "", "path to config.yaml (optional)")
		topN         = flag.Int("top", 5, "number of ranked candidates to return")
		validate     = flag.Bool("validate", false, "treat the argument as a CPE 2.3 string to validate instead of an asset name")
		checkCatalog = flag.Bool("check-catalog", true, "when -validate is set, also confirm catalog presence")
	)
	flag.Parse()

	query := strings.Join(flag.Args(), " ")
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: cpediscover [-top N] [-validate] [-check-catalog] <asset name or CPE string>")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logMgr, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		Caller:     cfg.Logging.Caller,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	service, err := cpediscovery.New(*cfg, cpediscovery.WithLogger(logMgr.For(logger.PipelineLog)))
	if err != nil {
		log.Fatalf("failed to build discovery service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("shutting down…")
		cancel()
	}()

	if *validate {
		runValidate(ctx, service, query, *checkCatalog)
		return
	}
	runFind(ctx, service, query, *topN)
}

func runFind(ctx context.Context, service *cpediscovery.Service, assetName string, topN int) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	for event := range service.FindCpe(ctx, assetName, topN) {
		switch event.Kind {
		case "error":
			fmt.Fprintf(os.Stderr, "[%s] %s\n", event.Phase, event.Message)
			os.Exit(1)
		case "completed":
			printCompleted(event)
		default:
			fmt.Printf("[%s] %s\n", event.Phase, event.Message)
		}
	}
}

func printCompleted(event cpediscovery.ProgressEvent) {
	if event.Payload == nil {
		return
	}
	fmt.Printf("\n%d of %d total candidate(s):\n", event.Payload.Count, event.Payload.TotalFound)
	for i, c := range event.Payload.Candidates {
		fmt.Printf("%2d. %-55s score=%.2f  title=%q\n", i+1, c.CPEName, c.Score, c.Title)
	}
}

func runValidate(ctx context.Context, service *cpediscovery.Service, cpeString string, checkCatalog bool) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result := service.ValidateCpe(ctx, cpeString, checkCatalog)
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode validation result: %v", err)
	}
	fmt.Println(string(out))
	if !result.IsValid {
		os.Exit(1)
	}
}
