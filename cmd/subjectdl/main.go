package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/mjarret/subjectdl"
	_ "github.com/mjarret/subjectdl/fetchers"
	"github.com/mjarret/subjectdl/internal/batch"
	"github.com/mjarret/subjectdl/internal/history"
)

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Value: "subjectdl.yaml",
		Usage: "load configuration from `FILE`",
	},
	&cli.StringFlag{
		Name:  "subjects",
		Usage: "read the subject mapping from `FILE`",
	},
	&cli.StringFlag{
		Name:  "target",
		Usage: "save downloads under `DIR`",
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "write the plain-text log to `FILE`",
	},
	&cli.StringFlag{
		Name:  "container",
		Usage: "output container `EXT`",
	},
	&cli.StringFlag{
		Name:  "format",
		Usage: "format selection `EXPR` for the yt-dlp backend",
	},
	&cli.StringFlag{
		Name:  "provider",
		Usage: "force downloads through the registered provider `NAME`",
	},
	&cli.BoolFlag{
		Name:  "no-history",
		Usage: "do not record completed downloads",
	},
	&cli.BoolFlag{
		Name:  "progress",
		Value: true,
		Usage: "show a progress bar per transfer",
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:   "subjectdl",
		Usage:  "batch-download the videos listed in a subjects file, one folder per subject",
		Flags:  flags,
		Action: run,
		Commands: []*cli.Command{
			{
				Name:   "history",
				Usage:  "list recorded downloads",
				Action: listHistory,
			},
		},
		HideHelpCommand: true,
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig layers the command line over the config file: overrides land before defaults are derived,
// so --target moves the default history file along with the base directory.
func loadConfig(c *cli.Context) (*subjectdl.Config, error) {
	config, err := subjectdl.ReadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("subjects"); v != "" {
		config.SubjectsFile = v
	}
	if v := c.String("target"); v != "" {
		config.BaseDir = v
	}
	if v := c.String("log-file"); v != "" {
		config.LogFile = v
	}
	if v := c.String("container"); v != "" {
		config.Container = v
	}
	if v := c.String("format"); v != "" {
		config.Format = v
	}
	if v := c.String("provider"); v != "" {
		config.Provider = v
	}
	config.ApplyDefaults()
	if c.Bool("no-history") {
		config.HistoryFile = ""
	}
	return config, config.Validate()
}

func run(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := subjectdl.NewLogger(config.LogFile)
	if err != nil {
		return fmt.Errorf("can't initialize logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx := subjectdl.WithLogger(c.Context, logger)
	logger.Info("starting subject downloader")

	processor := batch.New(config, &subjectdl.DefaultProviderRegistry).
		ShowProgress(c.Bool("progress"))
	if config.HistoryFile != "" {
		store, err := history.Open(config.HistoryFile)
		if err != nil {
			logger.Sugar().Warnf("continuing without download history: %v", err)
		} else {
			defer store.Close()
			processor.UseHistory(store)
		}
	}

	metrics := processor.Run(ctx)
	logger.Info("download process completed")

	// The printed summary is the run's health signal; item failures never set a non-zero exit code.
	fmt.Printf("\nFinal metrics: %v\n", metrics)
	return nil
}

func listHistory(c *cli.Context) error {
	config, err := loadConfig(c)
	if err != nil {
		return err
	}
	if config.HistoryFile == "" {
		return fmt.Errorf("download history is disabled")
	}
	store, err := history.Open(config.HistoryFile)
	if err != nil {
		return err
	}
	defer store.Close()

	count := 0
	err = store.Each(func(e history.Entry) error {
		count++
		fmt.Printf("%s  %8.2f MB  %s  [%s] %s\n",
			e.DownloadedAt.Format("2006-01-02 15:04:05"), float64(e.Size)/1024/1024, e.URL, e.Subject, e.Path)
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("no downloads recorded")
	}
	return nil
}
