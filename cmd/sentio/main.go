package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/app"
	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/models"
	"github.com/ternarybob/sentio/internal/server"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost  = flag.String("host", "", "Server host (overrides config)")
	noCache     = flag.Bool("no-cache", false, "Bypass the sentiment cache for score")
	source      = flag.String("source", models.SourceAll, "Source id or name for process")
	limit       = flag.Int("limit", 0, "Max articles for process (0 uses config)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sentio [flags] [serve|score <text>|process|version]\n\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer common.RecoverWithCrashFile()

	flag.Parse()

	command := "serve"
	args := flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	if command == "version" {
		fmt.Printf("Sentio version %s\n", common.GetFullVersion())
		return
	}

	if len(configFiles) == 0 {
		if _, err := os.Stat("sentio.toml"); err == nil {
			configFiles = append(configFiles, "sentio.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}
	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	if err := config.Validate(); err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.InstallCrashHandler(config.Logging.Dir)

	switch command {
	case "serve":
		common.PrintBanner(config, logger)
		os.Exit(serve(config, logger))
	case "score":
		os.Exit(score(config, logger, strings.Join(args, " ")))
	case "process":
		os.Exit(process(config, logger))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func serve(config *common.Config, logger arbor.ILogger) int {
	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer application.Close()

	if err := application.StartScheduler(); err != nil {
		logger.Error().Err(err).Msg("Failed to start scheduler")
		return 1
	}

	srv := server.New(application)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info().Msg("Interrupt signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("Server failed")
			return 1
		}
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
		return 1
	}
	return 0
}

// score analyzes text. Empty text is valid and scores neutral with zero confidence.
func score(config *common.Config, logger arbor.ILogger, text string) int {
	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer application.Close()

	item := application.Fusion.Analyze(context.Background(), text, !*noCache)
	return printJSON(map[string]interface{}{
		"item":     item,
		"category": models.CategoryFor(item.FinalScore),
	})
}

func process(config *common.Config, logger arbor.ILogger) int {
	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer application.Close()

	result, err := application.Processor.ProcessPending(context.Background(), *source, *limit)
	if err != nil {
		logger.Error().Err(err).Msg("Processing failed")
		return 1
	}

	logger.Info().
		Int("scored", len(result.Scored)).
		Int("failed", len(result.Failures)).
		Msg("Processing complete")
	return printJSON(result)
}

func printJSON(v interface{}) int {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}
