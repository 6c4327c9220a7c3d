package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/okian/juicerank/internal/loadgen"
	"github.com/okian/juicerank/pkg/logger"
)

const testTimeout = 10 * time.Minute

var (
	app        = kingpin.New("loadgen", "Submit synthetic beatmaps to juicerank and verify the leaderboard.")
	baseURL    = app.Flag("url", "Base URL of the service").Default("http://localhost:9080").String()
	maps       = app.Flag("maps", "Distinct maps to generate").Default("200").Short('n').Int()
	objects    = app.Flag("objects", "Hit objects per map").Default("300").Int()
	duplicates = app.Flag("duplicates", "Share of maps submitted twice").Default("0.1").Float64()
	topN       = app.Flag("top", "Leaderboard rows to fetch").Default("20").Int()
	workers    = app.Flag("workers", "Concurrent submitters").Default(strconv.Itoa(runtime.NumCPU())).Short('w').Int()
	timeout    = app.Flag("timeout", "HTTP request timeout").Default("30s").Duration()
	wait       = app.Flag("wait", "How long to wait for ratings").Default("2m").Duration()
	seed       = app.Flag("seed", "Generator seed").Default("1").Uint64()
	output     = app.Flag("output", "Write the generated maps to this JSON file").String()
	verbose    = app.Flag("verbose", "Log progress").Short('v').Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:    *baseURL,
		Maps:       *maps,
		Objects:    *objects,
		Duplicates: *duplicates,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		Wait:       *wait,
		Seed:       *seed,
		OutputFile: *output,
		Verbose:    *verbose,
	}
	if _, err := loadgen.Run(ctx, cfg, os.Stdout); err != nil {
		logger.Get().Error(ctx, "load test failed", logger.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}
