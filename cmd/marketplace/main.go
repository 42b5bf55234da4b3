package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DavidGamba/go-getoptions"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nhle/marketplace/internal/api"
	"github.com/nhle/marketplace/internal/app"
	"github.com/nhle/marketplace/internal/appstate"
	"github.com/nhle/marketplace/internal/credential"
	"github.com/nhle/marketplace/internal/keys"
	"github.com/nhle/marketplace/internal/model"
	"github.com/nhle/marketplace/internal/push"
	"github.com/nhle/marketplace/internal/session"
	"github.com/nhle/marketplace/internal/store"
	appsync "github.com/nhle/marketplace/internal/sync"
	"github.com/nhle/marketplace/internal/theme"
	"github.com/nhle/marketplace/internal/ui"
)

// options holds the values passed on the command line.
type options struct {
	Config string
	APIURL string
}

func parseCommandLine() *options {
	values := &options{}
	opt := getoptions.New()

	opt.Bool("help", false, opt.Alias("h", "?"))
	opt.StringVar(&values.Config, "config", model.DefaultConfigPath(),
		opt.Alias("c"),
		opt.Description("the path to the configuration file"))
	opt.StringVar(&values.APIURL, "api-url", "",
		opt.Description("the marketplace API origin, overriding the configuration"))

	_, err := opt.Parse(os.Args[1:])
	if opt.Called("help") {
		fmt.Fprint(os.Stderr, opt.Help())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprint(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		os.Exit(2)
	}

	return values
}

// openLog sends log output to the configured file so it does not draw
// over the terminal UI.
func openLog(cfg model.LogConfig) (*logrus.Entry, func(), error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})

	if cfg.File == "" {
		logger.SetOutput(io.Discard)
		return logrus.NewEntry(logger), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
	}
	logger.SetOutput(f)

	return logrus.NewEntry(logger), func() { _ = f.Close() }, nil
}

func run(opts *options) error {
	cfg, err := model.LoadConfig(opts.Config)
	if err != nil {
		return err
	}
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}

	log, closeLog, err := openLog(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	log = log.WithField("app", "marketplace")
	log.WithField("api", cfg.API.BaseURL).Info("starting")

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	prefs, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer prefs.Close()

	ring, err := credential.Open(model.ConfigDir())
	if err != nil {
		return err
	}

	state, err := appstate.New(context.Background(), prefs, session.NewStore(ring, log), log)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.RequestTimeout(), log)

	var dial appsync.DialFunc
	wsURL, err := push.WebSocketURL(cfg.API.BaseURL, cfg.Push.Path)
	if err != nil {
		log.WithError(err).Warn("push notifications disabled")
	} else {
		dialer := push.NewDialer(push.Config{
			URL:            wsURL,
			Topic:          cfg.Push.Topic,
			ReconnectDelay: cfg.ReconnectDelay(),
			Log:            log,
		})
		dial = func(ctx context.Context, token string, l push.Listener) (io.Closer, error) {
			sub, err := dialer.Connect(ctx, token, l)
			if err != nil {
				return nil, err
			}
			return sub, nil
		}
	}

	syncer := appsync.New(appsync.Config{
		API:          client,
		Dial:         dial,
		PollInterval: cfg.PollInterval(),
		Log:          log,
	})
	defer syncer.Stop()

	ctx := &ui.Context{
		API:      client,
		State:    state,
		Sync:     syncer,
		Styles:   theme.New(state.Theme()),
		Keys:     keys.DefaultKeyMap(),
		PageSize: cfg.Display.PageSize,
		Log:      log,

		Config:     cfg,
		ConfigPath: opts.Config,
	}

	if _, err := tea.NewProgram(app.New(ctx), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func main() {
	opts := parseCommandLine()

	// A missing .env file is fine; the environment is used as is.
	_ = godotenv.Load()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
