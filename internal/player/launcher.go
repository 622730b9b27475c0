package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoPlayer indicates that no candidate player could be launched
var ErrNoPlayer = errors.New("no candidate players found")

// Launcher opens watch URLs in an external player
type Launcher struct {
	command string   // configured player command, empty for detection
	args    []string // additional arguments for the player
	logger  *slog.Logger

	// seams over os/exec
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
	run      func(name string, args ...string) error
}

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // Command path: "mpv", "vlc", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command (e.g., ["-n"])
}

// players maps a player name to its launch paths per platform
var players = map[string]map[string][]launchPath{
	"mpv": {
		"darwin":  {{path: "mpv"}},
		"linux":   {{path: "mpv"}},
		"windows": {{path: "mpv"}},
	},
	"vlc": {
		"darwin":  {{path: "vlc"}, {path: "open-a:VLC"}},
		"linux":   {{path: "vlc"}},
		"windows": {{path: "vlc"}},
	},
	"iina": {
		"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}},
	},
	"celluloid": {
		"linux": {{path: "celluloid"}},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "vlc", "mpv"},
	"linux":   {"mpv", "celluloid", "vlc"},
	"windows": {"vlc", "mpv"},
}

// NewLauncher creates a Launcher. An empty command enables player detection.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		lookPath: exec.LookPath,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Launch opens url in the configured player, a detected player, or the system default
func (l *Launcher) Launch(url string) error {
	// Tier 1: User configured a specific player
	if l.command != "" {
		return l.launchConfigured(url)
	}

	// Tier 2: Try candidate chain (IINA → VLC → mpv on macOS, etc.)
	if name, err := l.detectAndLaunch(url); err == nil {
		l.logger.Info("launched with detected player", "player", name)
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate players found, using system default")
	return l.launchDefault(url)
}

func (l *Launcher) launchConfigured(url string) error {
	args := append(append([]string{}, l.args...), url)
	l.logger.Info("launching player", "command", l.command, "args", args)

	// On macOS, launch GUI apps with 'open -a' if command not in PATH
	if runtime.GOOS == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			return l.openWithApp(l.command, url, l.args, nil)
		}
	}
	return l.start(l.command, args...)
}

// detectAndLaunch tries candidate players in order and returns the one that started
func (l *Launcher) detectAndLaunch(url string) (string, error) {
	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		for _, lp := range players[name][runtime.GOOS] {
			var err error
			if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
				err = l.openWithApp(app, url, nil, lp.openFlags)
			} else if _, err = l.lookPath(lp.path); err == nil {
				err = l.start(lp.path, url)
			}
			if err == nil {
				return name, nil
			}
			l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
		}
	}
	return "", ErrNoPlayer
}

// openWithApp uses "open -a" and waits, so a missing app is reported
func (l *Launcher) openWithApp(app, url string, playerArgs, openFlags []string) error {
	cmdArgs := append(append([]string{}, openFlags...), "-a", app)
	if len(playerArgs) > 0 {
		cmdArgs = append(cmdArgs, "--args")
		cmdArgs = append(cmdArgs, playerArgs...)
	}
	cmdArgs = append(cmdArgs, url)
	return l.run("open", cmdArgs...)
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	l.logger.Info("launching with system default", "os", runtime.GOOS, "url", url)

	var err error
	switch runtime.GOOS {
	case "darwin":
		err = l.start("open", url)
	case "windows":
		err = l.start("cmd", "/c", "start", "", url)
	default:
		err = l.start("xdg-open", url)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
