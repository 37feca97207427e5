package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// options collects the runtime settings, sourced from the environment
// with a .env file as optional overrides.
type options struct {
	CameraID     int
	HTTPAddr     string
	DBPath       string
	HooksPath    string
	MotionThresh float64
	MaxHands     int
	NoTray       bool
}

func loadOptions() (options, error) {
	// Missing .env files are fine; explicit environment always wins.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return options{}, fmt.Errorf("failed to get home directory: %w", err)
	}
	dataDir := filepath.Join(homeDir, ".mudra")

	opts := options{
		CameraID:     0,
		HTTPAddr:     ":8080",
		DBPath:       filepath.Join(dataDir, "mudra.db"),
		HooksPath:    filepath.Join(dataDir, "hooks.json"),
		MotionThresh: 1.0,
		MaxHands:     2,
	}

	if v := os.Getenv("MUDRA_CAMERA_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return options{}, fmt.Errorf("invalid MUDRA_CAMERA_ID: %w", err)
		}
		opts.CameraID = id
	}
	if v := os.Getenv("MUDRA_HTTP_ADDR"); v != "" {
		opts.HTTPAddr = v
	}
	if v := os.Getenv("MUDRA_DB_PATH"); v != "" {
		opts.DBPath = v
	}
	if v := os.Getenv("MUDRA_HOOKS_PATH"); v != "" {
		opts.HooksPath = v
	}
	if v := os.Getenv("MUDRA_MOTION_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return options{}, fmt.Errorf("invalid MUDRA_MOTION_THRESHOLD: %w", err)
		}
		opts.MotionThresh = f
	}
	if v := os.Getenv("MUDRA_MAX_HANDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return options{}, fmt.Errorf("invalid MUDRA_MAX_HANDS: %w", err)
		}
		opts.MaxHands = n
	}
	if v := os.Getenv("MUDRA_NO_TRAY"); v == "1" || v == "true" {
		opts.NoTray = true
	}

	return opts, nil
}

func main() {
	fmt.Println("Mudra - Hand Gesture Recognition")

	opts, err := loadOptions()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(opts.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	hooks := hook.NewRunner(opts.HooksPath)
	if err := hooks.Load(); err != nil {
		log.Printf("Failed to load hooks: %v", err)
	} else if n := hooks.Manager().Count(); n > 0 {
		log.Printf("Loaded %d gesture hooks", n)
	}

	pipeline := app.New(app.Config{
		Store:        st,
		CameraID:     opts.CameraID,
		MotionThresh: opts.MotionThresh,
		MaxHands:     opts.MaxHands,
	})

	srv := server.New(server.Config{
		StaticDir: findWebDir(),
		Store:     st,
		App:       pipeline,
	})

	t := tray.New()

	// Fan confirmed gesture events out to the WebSocket clients, the
	// hook commands and the tray display.
	go func() {
		for event := range pipeline.Events() {
			srv.Live().Publish(event)
			t.SetGesture(event.Label, event.Confidence)
			hooks.Dispatch(hook.Payload{
				Label:      event.Label,
				Confidence: event.Confidence,
				Handedness: event.Handedness,
				Slot:       event.Slot,
				Timestamp:  event.Timestamp,
			})
		}
	}()

	go func() {
		log.Printf("Starting server on %s", opts.HTTPAddr)
		if err := srv.ListenAndServe(opts.HTTPAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if err := pipeline.Start(); err != nil {
		log.Printf("Failed to start pipeline: %v", err)
	} else {
		pipeline.SetEnabled(true)
	}
	defer pipeline.Stop()

	if opts.NoTray {
		// Headless mode: the server goroutine keeps the process alive.
		select {}
	}

	t.OnToggle(func(enabled bool) {
		pipeline.SetEnabled(enabled)
	})
	t.OnDashboard(func() {
		openBrowser("http://localhost" + opts.HTTPAddr)
	})
	t.OnQuit(func() {
		pipeline.Stop()
	})

	// Blocks until quit is chosen from the menu.
	t.Run()
}

// findWebDir searches for the web dashboard in common locations.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens the given URL with the platform's opener.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
