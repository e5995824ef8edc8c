package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/spatialtouch/internal/action"
	"github.com/ayusman/spatialtouch/internal/app"
	"github.com/ayusman/spatialtouch/internal/capture"
	"github.com/ayusman/spatialtouch/internal/config"
	"github.com/ayusman/spatialtouch/internal/gesture"
	"github.com/ayusman/spatialtouch/internal/log"
	"github.com/ayusman/spatialtouch/internal/plugin"
	"github.com/ayusman/spatialtouch/internal/server"
	"github.com/ayusman/spatialtouch/internal/store"
	"github.com/ayusman/spatialtouch/internal/tray"
)

// maxPluginRuns bounds concurrent plugin processes.
const maxPluginRuns = 4

func main() {
	configPath := flag.String("config", defaultConfigPath(), "settings file (YAML or JSON)")
	webDir := flag.String("web", "", "dashboard directory (default: search common locations)")
	historyDays := flag.Int("history-days", 30, "drop recorded gestures older than this many days, 0 keeps everything")
	flag.Parse()

	if err := run(*configPath, *webDir, *historyDays); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(configPath, webDir string, historyDays int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Init(cfg.System.EffectiveLogLevel(), cfg.System.LogFormat)
	log.Info("starting spatialtouch", "config", configPath)

	if err := os.MkdirAll(cfg.System.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.System.DBPath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if merged, err := cfg.LoadOverrides(st.Settings()); err != nil {
		log.Warn("ignoring saved settings", "error", err)
	} else {
		cfg = merged
	}
	log.Init(cfg.System.EffectiveLogLevel(), cfg.System.LogFormat)

	if historyDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -historyDays)
		if n, err := st.Events().Prune(cutoff); err != nil {
			log.Warn("prune gesture history failed", "error", err)
		} else if n > 0 {
			log.Info("pruned gesture history", "events", n)
		}
	}

	if cfg.System.AutoScreenSize {
		if w, h := action.ScreenSize(); w > 0 && h > 0 {
			cfg.Cursor.ScreenWidth, cfg.Cursor.ScreenHeight = w, h
			log.Info("detected screen size", "width", w, "height", h)
		}
	}

	plugins := plugin.NewManager(cfg.System.PluginDir)
	if err := plugins.Discover(); err != nil {
		log.Warn("plugin discovery failed", "dir", cfg.System.PluginDir, "error", err)
	}
	runner, err := action.NewPluginRunner(st.Bindings(), plugins, plugin.NewExecutor(cfg.System.PluginTimeoutMs), maxPluginRuns)
	if err != nil {
		return fmt.Errorf("load bindings: %w", err)
	}
	defer runner.Close()

	preview := capture.NewPreview(0)
	a, err := app.New(app.Config{
		Settings: cfg,
		Store:    st,
		Override: runner,
		Preview:  preview,
	})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("shutdown errors", "error", err)
		}
	}()

	var t *tray.Tray
	if cfg.System.TrayEnabled {
		t = tray.New(a)
		a.OnGesture(func(g gesture.Gesture) {
			if g.Type != gesture.CursorMove && g.Type != gesture.DragMove {
				t.SetLastGesture(g.Type.String())
			}
		})
		a.OnPause(t.SetPaused)
	}

	var srv *server.Server
	if cfg.System.APIEnabled {
		if webDir == "" {
			webDir = findWebDir(cfg.System.DataDir)
		}
		srv = server.New(server.Config{
			Controller:        a,
			Store:             st,
			Plugins:           plugins,
			OnBindingsChanged: runner.Refresh,
			Preview:           preview,
			StaticDir:         webDir,
		})
		a.OnGesture(srv.Hub().PublishGesture)
		a.OnPause(srv.Hub().PublishPaused)

		go func() {
			if err := srv.ListenAndServe(cfg.System.HTTPAddr); err != nil {
				log.Error("http server failed", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("http shutdown failed", "error", err)
			}
		}()
	}

	if err := a.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if t == nil {
		<-ctx.Done()
		log.Info("shutting down")
		return nil
	}

	t.OnDashboard(func() {
		if srv == nil {
			return
		}
		if err := openBrowser("http://" + cfg.System.HTTPAddr); err != nil {
			log.Warn("open dashboard failed", "error", err)
		}
	})
	t.OnQuit(stop)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
	log.Info("shutting down")
	return nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "spatialtouch.yaml"
	}
	return filepath.Join(home, ".spatialtouch", "config.yaml")
}

// findWebDir returns the first dashboard directory that exists, or "".
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux", "freebsd":
		cmd = exec.Command("xdg-open", url)
	default:
		return errors.New("unsupported platform " + runtime.GOOS)
	}
	return cmd.Start()
}
