// Package main provides the terminal reader entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/BadrElyatim/quran-app/internal/api/terminal"
	"github.com/BadrElyatim/quran-app/internal/app/reader"
	"github.com/BadrElyatim/quran-app/internal/domain/verse"
	"github.com/BadrElyatim/quran-app/internal/infra/config"
	"github.com/BadrElyatim/quran-app/internal/infra/logger"
	"github.com/BadrElyatim/quran-app/internal/infra/quran"
)

var (
	app        = kingpin.New("quran-reader", "Quran tajweed reader for the terminal")
	configPath = app.Flag("config", "Path to config file (default: built-in defaults)").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// reciters command
	recitersCmd = app.Command("reciters", "List reciters")

	// translations command
	translationsCmd = app.Command("translations", "List translations")

	// rules command
	rulesCmd = app.Command("rules", "List tajweed rules")

	// show command
	showCmd           = app.Command("show", "Show a chapter")
	showChapter       = showCmd.Arg("chapter", "Chapter number (1-114)").Required().Int()
	showTranslation   = showCmd.Flag("translation", "Translation resource ID").Short('t').Int()
	showNoTranslation = showCmd.Flag("no-translation", "Hide the translation").Bool()

	// css command
	cssCmd      = app.Command("css", "Print the tajweed stylesheet")
	cssDisabled = cssCmd.Flag("disable", "Rule to render disabled (repeatable)").Short('d').Strings()

	// play command
	playCmd     = app.Command("play", "Play a chapter interactively")
	playChapter = playCmd.Arg("chapter", "Chapter number (1-114)").Default("1").Int()
	playReciter = playCmd.Flag("reciter", "Reciter ID").Short('r').Int()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The terminal is the reader's output; logs go to stderr at warn unless asked.
	loggerConfig := logger.Config{Output: cfg.Log.Output, Level: "warn"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	sessionCfg, err := reader.ConfigFrom(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client := quran.New(quran.Config{
		BaseURL:           cfg.API.BaseURL,
		AudioBaseURL:      cfg.API.AudioBaseURL,
		Timeout:           cfg.API.Timeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		Language:          cfg.Reader.Language,
	})

	ctx := context.Background()

	switch command {
	case recitersCmd.FullCommand():
		err = listReciters(ctx, client)
	case translationsCmd.FullCommand():
		err = listTranslations(ctx, client)
	case rulesCmd.FullCommand():
		terminal.WriteRules(os.Stdout, sessionCfg.Tajweed.Rules())
	case showCmd.FullCommand():
		err = show(ctx, client, sessionCfg)
	case cssCmd.FullCommand():
		err = printStylesheet(sessionCfg)
	case playCmd.FullCommand():
		err = play(ctx, cfg, client, sessionCfg)
	}

	if err != nil {
		zlog.Debug().Err(err).Msgf("%s failed", command)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listReciters(ctx context.Context, client *quran.Client) error {
	reciters, err := client.Reciters(ctx)
	if err != nil {
		return err
	}
	terminal.WriteReciters(os.Stdout, reciters)
	return nil
}

func listTranslations(ctx context.Context, client *quran.Client) error {
	translations, err := client.Translations(ctx)
	if err != nil {
		return err
	}
	terminal.WriteTranslations(os.Stdout, translations)
	return nil
}

func show(ctx context.Context, client *quran.Client, cfg reader.Config) error {
	sel := cfg.Selection
	sel.Chapter = *showChapter
	if *showTranslation > 0 {
		sel.TranslationID = *showTranslation
	}
	if *showNoTranslation {
		sel.ShowTranslation = false
	}

	if !verse.IsValidChapter(sel.Chapter) {
		return fmt.Errorf("chapter %d is not in 1-%d", sel.Chapter, verse.TotalChapters)
	}

	page, err := reader.BuildPage(ctx, client, sel)
	if err != nil {
		return err
	}
	return terminal.WritePage(os.Stdout, page, cfg.Tajweed, 0)
}

func printStylesheet(cfg reader.Config) error {
	settings := cfg.Tajweed
	for _, id := range *cssDisabled {
		if !settings.SetEnabled(strings.TrimSpace(id), false) {
			return fmt.Errorf("unknown tajweed rule: %s", id)
		}
	}
	fmt.Println(settings.Stylesheet())
	return nil
}
