// Command maydemo renders the counter application off screen.
//
// It loads may.yaml from the project directory, draws the first frame,
// taps the increment button a few times and writes each state as a PNG.
// With -trace it also writes the tick timeline as JSON.
//
//	maydemo -dir . -out frames -taps 3 -trace trace.json
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/may/pkg/config"
	"github.com/go-drift/may/pkg/core"
	"github.com/go-drift/may/pkg/engine"
	"github.com/go-drift/may/pkg/fonts"
	"github.com/go-drift/may/pkg/graphics"
	"github.com/go-drift/may/pkg/layout"
	"github.com/go-drift/may/pkg/raster"
	"github.com/go-drift/may/pkg/widgets"
)

type options struct {
	dir   string
	out   string
	taps  int
	trace string
	watch bool
}

type counterState struct {
	count int
}

func main() {
	var opts options
	flag.StringVar(&opts.dir, "dir", ".", "project directory holding may.yaml")
	flag.StringVar(&opts.out, "out", "frames", "directory the PNG frames are written to")
	flag.IntVar(&opts.taps, "taps", 3, "number of simulated taps on the increment button")
	flag.StringVar(&opts.trace, "trace", "", "write the tick timeline as JSON to this file")
	flag.BoolVar(&opts.watch, "watch", false, "reload the configured theme file while running")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "maydemo: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Resolve(opts.dir)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	th, err := cfg.LoadTheme()
	if err != nil {
		return err
	}
	reg := fonts.Shared()
	if loaded, err := cfg.LoadFonts(ctx, reg); err != nil {
		return err
	} else if len(loaded) > 0 {
		logger.Debug("fonts loaded", "names", loaded)
	}

	ecfg := engine.FromConfig(cfg)
	ecfg.Logger = logger
	canvas := raster.NewCanvas(ecfg.Size, reg)
	eng := engine.New(counterApp(), &counterState{}, ecfg,
		engine.WithTheme[counterState](th),
		engine.WithFonts[counterState](reg),
		engine.WithSurface[counterState](canvas),
	)

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return err
	}
	if _, err := eng.Tick(); err != nil {
		return err
	}
	if err := canvas.SavePNG(filepath.Join(opts.out, "frame-0.png")); err != nil {
		return err
	}
	target := layout.ChildAt(eng.Layout(), 0).Bounds().Center()

	events := make(chan engine.Event)
	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return eng.Run(gctx, events)
	})
	g.Go(func() error {
		defer close(events)
		for i := 1; i <= opts.taps; i++ {
			for _, ev := range tap(target) {
				select {
				case events <- ev:
				case <-gctx.Done():
					return nil
				}
			}
			logger.Info("tapped", "tap", i)
		}
		return nil
	})
	if opts.watch && cfg.ThemePath != "" {
		g.Go(func() error {
			err := eng.WatchTheme(gctx, cfg.ThemePath)
			if stderrors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}

	final := filepath.Join(opts.out, "frame-"+strconv.Itoa(opts.taps)+".png")
	if err := canvas.SavePNG(final); err != nil {
		return err
	}
	logger.Info("done", "count", eng.State().count, "frames", canvas.Frames(), "out", final)

	if opts.trace != "" {
		return writeTrace(opts.trace, eng.Trace().Snapshot())
	}
	return nil
}

// tap is one press and release of the left button at pos.
func tap(pos graphics.Offset) []engine.Event {
	return []engine.Event{
		engine.CursorMoved{Position: pos},
		engine.MouseInput{Button: core.MouseButtonLeft, State: core.Pressed},
		engine.MouseInput{Button: core.MouseButtonLeft, State: core.Released},
	}
}

func counterApp() core.Widget[counterState] {
	inc := widgets.NewButton[counterState](widgets.NewText[counterState]("Increase")).
		WithOnPressed(func(s *counterState) core.Update {
			s.count++
			return core.UpdateDraw
		})
	dec := widgets.NewButton[counterState](widgets.NewText[counterState]("Decrease")).
		WithOnPressed(func(s *counterState) core.Update {
			s.count--
			return core.UpdateDraw
		})
	value := widgets.BoundText(func(s *counterState) string { return strconv.Itoa(s.count) }).
		WithFontSize(32)
	return widgets.NewContainer[counterState](inc, dec, value).WithStyle(widgets.ColumnStyle())
}

func writeTrace(path string, tl engine.Timeline) error {
	data, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
