package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/vidshare/internal/config"
	"github.com/mmcdole/vidshare/internal/domain"
	"github.com/mmcdole/vidshare/internal/history"
	"github.com/mmcdole/vidshare/internal/log"
	"github.com/mmcdole/vidshare/internal/playback"
	"github.com/mmcdole/vidshare/internal/player"
	"github.com/mmcdole/vidshare/internal/search"
	"github.com/mmcdole/vidshare/internal/store"
	"github.com/mmcdole/vidshare/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `usage: vidshare [-v] [command]

commands:
  browse            interactive history browser (default)
  list              print recently viewed videos, most recent first
  record -id ID     record a view of a video
  open ID           open a recorded video in the player
  remove ID         remove a video from history
  clear             clear all history
  find QUERY        search history by title
`

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if showVersion {
		fmt.Printf("vidshare %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired components for one invocation
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	history  *history.Cache
	playback *playback.Service
	out      io.Writer
}

func run(args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting vidshare", "version", Version)

	handle := openStore(cfg, logger)
	defer handle.Close()

	cache := history.NewCache(handle,
		history.WithCapacity(cfg.History.Capacity),
		history.WithLogger(logger),
	)
	launcher := player.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		history:  cache,
		playback: playback.NewService(launcher, cache, cfg.Player.WatchURL, logger),
		out:      os.Stdout,
	}
	return a.dispatch(context.Background(), args)
}

// openStore opens the history database. History is optional, so an
// unavailable store degrades to memory-only for this session.
func openStore(cfg *config.Config, logger *slog.Logger) domain.HistoryStore {
	if cfg.Storage.MemoryOnly {
		return store.NewMemoryStore()
	}

	s, err := store.Open(cfg.Storage.Dir, store.Options{
		Profile: cfg.Storage.Profile,
		Timeout: cfg.Storage.OpenTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn("history storage unavailable, using memory", "error", err, "kind", domain.ErrorKind(err))
		return store.NewMemoryStore()
	}
	logger.Debug("opened history store", "path", s.Path(), "schema", s.Version())
	return s
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd := "browse"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "browse":
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return a.list(ctx)
		}
		return a.browse()
	case "list":
		return a.list(ctx)
	case "record":
		return a.record(ctx, args)
	case "open":
		return a.open(ctx, args)
	case "remove":
		if len(args) != 1 {
			return errors.New("usage: vidshare remove ID")
		}
		a.history.RemoveViewed(ctx, args[0])
		return nil
	case "clear":
		if err := a.history.ClearViewed(ctx); err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		fmt.Fprintln(a.out, "History cleared")
		return nil
	case "find":
		if len(args) == 0 {
			return errors.New("usage: vidshare find QUERY")
		}
		a.print(search.Rank(a.history.ListViewed(ctx), strings.Join(args, " ")))
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *app) browse() error {
	model := tui.NewModel(a.history, a.playback, a.cfg.UI.RelativeTimes)
	p := tea.NewProgram(model, tea.WithAltScreen())

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	a.logger.Info("shutting down")
	return nil
}

func (a *app) list(ctx context.Context) error {
	a.print(a.history.ListViewed(ctx))
	return nil
}

func (a *app) record(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var v domain.Video
	var created string
	fs.StringVar(&v.VideoID, "id", "", "video id")
	fs.StringVar(&v.SourceVideoID, "source", "", "external platform video id")
	fs.StringVar(&v.Title, "title", "", "title")
	fs.StringVar(&v.Description, "description", "", "description")
	fs.StringVar(&v.ThumbnailURL, "thumbnail", "", "thumbnail URL")
	fs.StringVar(&v.SharedByUserID, "sharer-id", "", "sharing user id")
	fs.StringVar(&v.SharerUsername, "sharer", "", "sharing username")
	fs.StringVar(&v.SharerAvatarURL, "avatar", "", "sharer avatar URL")
	fs.StringVar(&created, "created", "", "when the video was shared (RFC 3339)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if v.VideoID == "" {
		return errors.New("usage: vidshare record -id ID [flags]")
	}
	if created != "" {
		t, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return fmt.Errorf("record: invalid -created: %w", err)
		}
		v.CreatedAt = t
	}

	a.history.RecordView(ctx, v)
	return nil
}

func (a *app) open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: vidshare open ID")
	}
	entry, ok := a.history.Lookup(ctx, args[0])
	if !ok {
		return fmt.Errorf("video %q is not in history", args[0])
	}
	return a.playback.Open(ctx, entry.Video)
}

func (a *app) print(entries []domain.RecentlyViewedEntry) {
	now := time.Now()
	for _, e := range entries {
		when := e.ViewedAt.Local().Format(time.DateTime)
		if a.cfg.UI.RelativeTimes {
			when = e.ViewedAgo(now)
		}
		fmt.Fprintf(a.out, "%-12s %-6s %s", e.VideoID, when, e.DisplayTitle())
		if s := e.Sharer(); s != "" {
			fmt.Fprintf(a.out, "  @%s", s)
		}
		fmt.Fprintln(a.out)
	}
}
