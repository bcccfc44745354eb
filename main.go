// Command avplay is a runnable demo harness for the avsync engine: it
// wires a synthetic test-pattern video source and a silence-paced audio
// source through an SDL2 window, so the engine's frame drop/duplication
// and clock-slaving behavior can be watched end to end without a real
// decoder. Adapted from the teacher's main.go SDL2 bring-up sequence,
// trimmed of the kiosk-specific ARM/Raspberry Pi tuning that has no
// equivalent in this module's scope.
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/veandco/go-sdl2/sdl"

	"avsync/pkg/assets"
	"avsync/pkg/avsync"
	"avsync/pkg/demosource"
	"avsync/pkg/diagnostics"
	"avsync/pkg/display"
	"avsync/pkg/input"
	"avsync/pkg/settings"
	"avsync/pkg/sharedTypes"
)

const (
	windowTitle    = "avplay"
	defaultWidth   = 960
	defaultHeight  = 540
	videoFPS       = 30.0
	audioBufferDur = 20 * time.Millisecond
)

func main() {
	// SDL2 requires all calls to originate from the thread that
	// initialized it.
	runtime.LockOSThread()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Printf("avplay: no .env file loaded: %v", err)
	}

	prefetchDemoAsset()

	cfg := configFromEnv()
	saved := settings.Load()

	if err := initializeSDL2(); err != nil {
		log.Fatalf("avplay: SDL2 init failed: %v", err)
	}
	defer sdl.Quit()

	window, renderer, err := createWindowAndRenderer(windowTitle, defaultWidth, defaultHeight)
	if err != nil {
		log.Fatalf("avplay: window/renderer init failed: %v", err)
	}
	defer window.Destroy()
	defer renderer.Destroy()

	sink := display.NewSDLSink(renderer)
	state := &avsync.PlayerState{
		SyncType:  parseSyncType(saved.SyncType),
		FrameDrop: true,
		RealTime:  false,
	}
	diag := diagnostics.NewRecorder(200)

	engine := avsync.NewSyncEngine(cfg, state, sink, avsync.IdentityScaler{}, diag)

	video := demosource.NewVideoSource(defaultWidth, defaultHeight, videoFPS)
	audio := demosource.NewAudioSource(audioBufferDur, engine.UpdateAudioClock)

	video.Start()
	audio.Start()
	engine.Start(video, audio)

	log.Printf("avplay: running, sync=%s speed=%.2f", state.SyncType, saved.PlaybackSpeed)

	runEventLoop(engine, state, diag)

	engine.Stop()
	audio.Stop()
	video.Stop()

	if err := settings.Save(settings.Settings{PlaybackSpeed: saved.PlaybackSpeed, SyncType: state.SyncType.String()}); err != nil {
		log.Printf("avplay: failed to save settings: %v", err)
	}

	log.Println("avplay: shut down cleanly")
}

// configFromEnv starts from the spec's recommended defaults and applies
// any AVPLAY_-prefixed overrides found in the environment, so a .env
// file can retune the engine without a rebuild.
func configFromEnv() avsync.SyncConfig {
	cfg := avsync.DefaultSyncConfig()
	if v, ok := floatFromEnv("AVPLAY_REFRESH_RATE"); ok {
		cfg.RefreshRate = v
	}
	if v, ok := floatFromEnv("AVPLAY_NO_SYNC_THRESHOLD"); ok {
		cfg.NoSyncThreshold = v
	}
	if live, _ := strconv.ParseBool(os.Getenv("AVPLAY_LIVE")); live {
		cfg = cfg.WithLiveMaxFrameDuration()
	}
	return cfg
}

func floatFromEnv(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("avplay: ignoring malformed %s=%q: %v", key, raw, err)
		return 0, false
	}
	return v, true
}

func parseSyncType(s string) avsync.SyncType {
	switch s {
	case "video":
		return avsync.SyncVideo
	case "external":
		return avsync.SyncExternal
	default:
		return avsync.SyncAudio
	}
}

// prefetchDemoAsset tries to pull a demo clip from S3 when the relevant
// environment variables are present; in their absence (the common case
// for this demo, which only ever plays the synthetic pattern) it logs
// and moves on rather than failing startup.
func prefetchDemoAsset() {
	bucket := os.Getenv("AVPLAY_DEMO_BUCKET")
	key := os.Getenv("AVPLAY_DEMO_KEY")
	if bucket == "" || key == "" {
		return
	}
	path, err := assets.FetchDemoClip(sharedTypes.MediaSource{Bucket: bucket, Key: key}, "./cache")
	if err != nil {
		log.Printf("avplay: demo asset prefetch skipped: %v", err)
		return
	}
	log.Printf("avplay: prefetched demo asset to %s (not decoded by this build)", path)
}

// initializeSDL2 tries each video driver plausible for the current OS in
// turn, falling back to the dummy driver so the demo still runs (with no
// visible window) in a headless CI or container environment.
func initializeSDL2() error {
	if os.Getenv("SDL_VIDEODRIVER") != "" {
		return sdl.Init(sdl.INIT_VIDEO)
	}

	var drivers []string
	switch runtime.GOOS {
	case "darwin":
		drivers = []string{"cocoa", "dummy"}
	case "linux":
		drivers = []string{"wayland", "x11", "dummy"}
	default:
		drivers = []string{"dummy"}
	}

	var lastErr error
	for _, driver := range drivers {
		sdl.SetHint(sdl.HINT_VIDEODRIVER, driver)
		if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
			lastErr = err
			log.Printf("avplay: SDL driver %q failed: %v", driver, err)
			continue
		}
		log.Printf("avplay: SDL video driver initialized: %s", driver)
		return nil
	}
	return fmt.Errorf("avplay: no SDL video driver available, last error: %w", lastErr)
}

func createWindowAndRenderer(title string, width, height int32) (*sdl.Window, *sdl.Renderer, error) {
	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, width, height, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, nil, fmt.Errorf("create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_SOFTWARE)
		if err != nil {
			window.Destroy()
			return nil, nil, fmt.Errorf("create renderer: %w", err)
		}
		log.Printf("avplay: falling back to software renderer")
	}
	return window, renderer, nil
}

// runEventLoop polls SDL events until the window is closed or Escape is
// pressed, toggling pause with Space and logging a diagnostics snapshot
// once per second.
func runEventLoop(engine *avsync.SyncEngine, state *avsync.PlayerState, diag *diagnostics.Recorder) {
	keys := input.NewKeyPressTracker()
	lastReport := time.Now()

	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				return
			}
		}

		keyState := sdl.GetKeyboardState()
		if keys.IsPressed(keyState, sdl.SCANCODE_ESCAPE) {
			return
		}
		if keys.IsPressed(keyState, sdl.SCANCODE_SPACE) {
			state.PauseRequest = !state.PauseRequest
			log.Printf("avplay: pause=%v", state.PauseRequest)
		}
		if keys.IsPressed(keyState, sdl.SCANCODE_V) {
			state.SyncType = avsync.SyncVideo
			log.Printf("avplay: sync=%s", state.SyncType)
		}
		if keys.IsPressed(keyState, sdl.SCANCODE_A) {
			state.SyncType = avsync.SyncAudio
			log.Printf("avplay: sync=%s", state.SyncType)
		}
		if keys.IsPressed(keyState, sdl.SCANCODE_E) {
			state.SyncType = avsync.SyncExternal
			state.RealTime = true
			log.Printf("avplay: sync=%s", state.SyncType)
		}

		if time.Since(lastReport) >= time.Second {
			snap := diag.Snapshot()
			log.Printf("avplay: ticks=%d drops=%d dups=%d avgTick=%s", snap.Ticks, snap.Drops, snap.Duplicates, snap.AvgTickLatency)
			lastReport = time.Now()
		}

		sdl.Delay(16)
	}
}
