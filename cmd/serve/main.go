package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"time"

	"mocap-pair-viewer/internal/config"
	"mocap-pair-viewer/internal/logging"
	"mocap-pair-viewer/internal/playback"
	"mocap-pair-viewer/internal/postprocess"
	"mocap-pair-viewer/internal/skelmesh"
	"mocap-pair-viewer/internal/stream"
	"mocap-pair-viewer/internal/study"
	"mocap-pair-viewer/internal/viewer"
)

const page = `<!doctype html>
<title>mocap pair</title>
<body style="margin:0;background:#eee">
<div id="info" style="font:13px monospace;padding:4px"></div>
<img id="view" alt="">
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.binaryType = "blob";
let url;
ws.onmessage = (e) => {
  if (typeof e.data === "string") { document.getElementById("info").textContent = e.data; return; }
  if (url) URL.revokeObjectURL(url);
  url = URL.createObjectURL(e.data);
  document.getElementById("view").src = url;
};
</script>`

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Path to base directory (default: auto-detect)")
	listen := flag.String("listen", "", "HTTP listen address (default: :8080)")
	pairIdx := flag.Int("pair", 0, "Flat pair index to play")
	trial := flag.Int("trial", -1, "Play this position of the seeded trial order instead of -pair")
	seed := flag.Uint64("seed", 1, "Seed for the trial order")
	fps := flag.Int("fps", 0, "Stream frame rate (default: config fps)")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()
	logger := logging.New(os.Stderr, *verbose)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{DataDir: *dataDir, Listen: *listen})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *fps > 0 {
		cfg.FPS = *fps
	}

	st, err := study.Load(cfg.StudyXML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading study: %v\n", err)
		os.Exit(1)
	}
	var pair study.Pair
	if *trial >= 0 {
		pair, err = st.TrialPair(*trial, *seed)
	} else {
		pair, err = st.PairAt(*pairIdx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	normalizer, err := cfg.Normalizer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	normalizer.Logger = logger
	cameras, err := cfg.CameraTable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Viewers join the registry only once fully loaded.
	reg := playback.NewRegistry(logger)
	loader := viewer.NewCachedLoader(viewer.FileLoader{Dir: cfg.BVHDir})
	var views []*viewer.Viewer
	for _, src := range []string{pair.Left, pair.Right} {
		v, err := viewer.Load(ctx, loader, src, viewer.Options{
			Label:       src,
			Width:       cfg.ViewportWidth,
			Height:      cfg.ViewportHeight,
			Supersample: cfg.Supersample,
			Placement:   cameras.Lookup(pair.ModNo),
			Normalizer:  normalizer,
			Mesh:        skelmesh.DefaultOptions(),
			Grid:        true,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("viewer not started", "source", src, "err", err)
			continue
		}
		views = append(views, v)
		reg.Register(v)
	}
	if reg.Len() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no motion could be loaded")
		os.Exit(1)
	}

	hub := stream.NewHub(logger)
	if err := hub.SetInfo(map[string]any{
		"pair":     pair.Index,
		"category": pair.CategoryName,
		"left":     pair.Left,
		"right":    pair.Right,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	loop := &playback.Loop{
		Registry: reg,
		Interval: time.Second / time.Duration(cfg.FPS),
		OnFrame: func(tick uint64, frames []*image.NRGBA) {
			panels := make([]postprocess.Panel, len(frames))
			for i, f := range frames {
				panels[i] = postprocess.Panel{Image: f, Caption: views[i].Label}
			}
			if err := hub.BroadcastImage(postprocess.SideBySide(panels)); err != nil {
				logger.Warn("frame not sent", "tick", tick, "err", err)
			}
		},
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	srv := &http.Server{Addr: cfg.Listen, Handler: mux}

	go func() {
		<-ctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", "err", err)
		}
	}()
	go loop.Run(ctx)

	fmt.Printf("Playing %s vs %s on http://%s\n", pair.Left, pair.Right, cfg.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, v := range views {
		reg.Deregister(v)
		v.Dispose()
	}
	fmt.Printf("Stopped after %d frames\n", loop.Ticks())
}
