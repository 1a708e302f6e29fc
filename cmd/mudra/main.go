package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/inference"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/resource"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to mudra.yaml (default: search . and ~/.mudra)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger.Error("mudra failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	loader, err := config.NewLoader(configPath)
	if err != nil {
		return err
	}
	cfg := loader.Config()
	logger.SetLevel(cfg.Log.Level)
	logger.Info("mudra starting", "config", loader.File(), "data_dir", cfg.DataDir)

	loader.Watch(func(c *config.Config) {
		logger.SetLevel(c.Log.Level)
	})

	st, err := store.New(filepath.Join(cfg.DataDir, "mudra.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	arbiter, closeModel, err := buildArbiter(cfg)
	if err != nil {
		return err
	}
	defer closeModel()

	a := app.New(app.Config{
		Store:   st,
		Arbiter: arbiter,
		Camera: capture.NewCamera(capture.Options{
			DeviceID: cfg.Camera.DeviceID,
			FPS:      cfg.Camera.FPS,
		}),
		FPS:          cfg.Camera.FPS,
		MotionThresh: cfg.Camera.MotionThreshold,
	})

	hub := server.NewLabelHub()
	a.Subscribe(hub)

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info("serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Arbiter:   arbiter,
		Camera:    a.Camera(),
		Latest:    a,
		Labels:    hub,
		Toggle:    a,
	})

	defer a.Stop()
	if err := a.Start(); err != nil {
		logger.Warn("camera unavailable, live classification disabled", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Tray.Enabled {
		return srv.Run(ctx, cfg.Server.Addr)
	}

	// The tray must own the main goroutine.
	t := tray.New(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnQuit(stop)
	a.Subscribe(t)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx, cfg.Server.Addr)
		t.Quit()
	}()
	t.Run()
	stop()
	return <-errCh
}

// buildArbiter loads the learned classifier when the strategy needs it. A
// model that fails to load leaves the arbiter on rules.
func buildArbiter(cfg *config.Config) (*gesture.Arbiter, func(), error) {
	strategy, err := gesture.ParseStrategy(cfg.Classifier.Strategy)
	if err != nil {
		return nil, nil, err
	}

	noop := func() {}
	if strategy == gesture.StrategyRules {
		logger.Info("classifier ready", "strategy", strategy)
		return gesture.NewArbiter(gesture.ArbiterConfig{Strategy: strategy}), noop, nil
	}

	engine := inference.NewEngine(inference.Config{
		LibraryPath: cfg.ONNX.LibraryPath,
		InputName:   cfg.Classifier.InputName,
		OutputName:  cfg.Classifier.OutputName,
	})
	resolver := resource.New(cfg.Classifier.ModelDirs...)

	lc, err := gesture.NewLearnedClassifier(resolver, engine, cfg.Classifier.Learned())
	if err != nil {
		logger.Warn("learned classifier unavailable, using rules", "err", err)
		return gesture.NewArbiter(gesture.ArbiterConfig{Strategy: strategy}), shutdownRuntime, nil
	}
	logger.Info("classifier ready", "strategy", strategy, "model", lc.Path())

	closeModel := func() {
		if err := lc.Close(); err != nil {
			logger.Warn("error closing model", "err", err)
		}
		shutdownRuntime()
	}
	return gesture.NewArbiter(gesture.ArbiterConfig{Learned: lc, Strategy: strategy}), closeModel, nil
}

func shutdownRuntime() {
	if err := inference.Shutdown(); err != nil {
		logger.Warn("error shutting down onnxruntime", "err", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(home, ".mudra", "web")
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}
