package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/BadrElyatim/quran-app/internal/api/terminal"
	"github.com/BadrElyatim/quran-app/internal/app/playback"
	"github.com/BadrElyatim/quran-app/internal/app/reader"
	"github.com/BadrElyatim/quran-app/internal/infra/config"
	"github.com/BadrElyatim/quran-app/internal/infra/quran"
	"github.com/BadrElyatim/quran-app/internal/infra/speaker"
)

// play runs the interactive player until the user quits or a signal arrives.
func play(ctx context.Context, cfg *config.Config, client *quran.Client, sessionCfg reader.Config) error {
	if !speaker.Available {
		return errors.Wrap(speaker.ErrAudioUnavailable, "this build has no audio output")
	}

	speakerCfg := speaker.Config{TimeUpdateInterval: cfg.Playback.TimeUpdateInterval()}
	chapterTr := speaker.New(speakerCfg)
	verseTr := speaker.New(speakerCfg)
	defer chapterTr.Close()
	defer verseTr.Close()

	player := playback.NewPlayer(chapterTr, verseTr, client, playback.Config{Volume: cfg.Playback.InitialVolume()})
	defer player.Close()

	if *playReciter > 0 {
		sessionCfg.Selection.ReciterID = *playReciter
	}
	session := reader.NewSession(client, player, sessionCfg)
	if err := session.GoTo(*playChapter); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	load(ctx, session)
	fmt.Println(terminal.Help)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	events := player.Events()
	for {
		select {
		case <-sigCh:
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			printEvent(session, ev)

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			cmd, err := terminal.ParseCommand(line)
			if err != nil {
				fmt.Printf("%v (h for help)\n", err)
				continue
			}
			if cmd.Kind == terminal.CommandQuit {
				return nil
			}
			execute(ctx, session, cmd)
		}
	}
}

// load fetches the page and the chapter audio for the current selection.
func load(ctx context.Context, session *reader.Session) {
	page, err := session.LoadPage(ctx)
	if err != nil {
		fmt.Printf("Failed to load chapter: %v\n", err)
	} else if err := terminal.WritePage(os.Stdout, page, session.Tajweed(), 0); err != nil {
		zlog.Warn().Err(err).Msg("failed to render page")
	}

	if err := session.LoadAudio(ctx); err != nil {
		fmt.Printf("Failed to load audio: %v\n", err)
		return
	}
	if name := session.ReciterName(ctx); name != "" {
		fmt.Printf("Reciter: %s\n", name)
	}
}

func execute(ctx context.Context, session *reader.Session, cmd terminal.Command) {
	player := session.Player()

	switch cmd.Kind {
	case terminal.CommandTogglePlay:
		if err := player.TogglePlayPause(ctx); err != nil {
			fmt.Printf("Cannot play: %v\n", err)
		}
	case terminal.CommandPlayVerse:
		if err := player.PlayVerse(ctx, cmd.Int); err != nil {
			fmt.Printf("Cannot play verse %d: %v\n", cmd.Int, err)
		}
	case terminal.CommandStopVerse:
		player.StopVerse()
	case terminal.CommandNext:
		if !session.Next() {
			fmt.Println("Already at the last chapter")
			return
		}
		load(ctx, session)
	case terminal.CommandPrevious:
		if !session.Previous() {
			fmt.Println("Already at the first chapter")
			return
		}
		load(ctx, session)
	case terminal.CommandVolume:
		fmt.Printf("Volume: %d%%\n", int(player.SetVolume(cmd.Number)*100+0.5))
	case terminal.CommandSeek:
		player.Seek(cmd.Number)
	case terminal.CommandReciter:
		session.SetReciter(cmd.Int)
		if err := session.LoadAudio(ctx); err != nil {
			fmt.Printf("Failed to load audio: %v\n", err)
			return
		}
		if name := session.ReciterName(ctx); name != "" {
			fmt.Printf("Reciter: %s\n", name)
		}
	case terminal.CommandToggleRule:
		if !session.ToggleRule(cmd.Arg) {
			fmt.Printf("Unknown tajweed rule: %s\n", cmd.Arg)
		}
	case terminal.CommandShow:
		page, ok := session.Page()
		if !ok {
			fmt.Println("No page loaded")
			return
		}
		state := player.Timeline().State()
		if err := terminal.WritePage(os.Stdout, page, session.Tajweed(), state.ActiveVerse); err != nil {
			zlog.Warn().Err(err).Msg("failed to render page")
		}
	case terminal.CommandHelp:
		fmt.Println(terminal.Help)
	}
}

func printEvent(session *reader.Session, ev playback.Event) {
	player := session.Player()
	selected, _ := player.Switcher().Selected()

	switch ev.Type {
	case playback.EventVerseChanged:
		fmt.Println(terminal.Status(ev.State, player.Mode(), selected))
		if page, ok := session.Page(); ok && ev.Verse > 0 {
			if v, ok := page.Find(ev.Verse); ok && v.HasTranslation() {
				fmt.Printf("  %s\n", v.Translation)
			}
		}
	case playback.EventLoaded:
		fmt.Println(terminal.Status(ev.State, player.Mode(), selected))
	case playback.EventEnded:
		fmt.Println("Chapter finished")
	case playback.EventModeChanged:
		if ev.Verse > 0 {
			fmt.Printf("Playing verse %d\n", ev.Verse)
		}
	}
}
