package browser

import (
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Process hooks, replaced in tests
var (
	goos     = runtime.GOOS
	lookPath = exec.LookPath
	start    = func(name string, args ...string) error {
		return exec.Command(name, args...).Start()
	}
)

// Opener opens movie pages in a browser
type Opener struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	webURL  string   // site root, e.g. "https://www.themoviedb.org"
	logger  *slog.Logger
}

// NewOpener creates a new Opener
func NewOpener(command string, args []string, webURL string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: strings.TrimSpace(command),
		args:    args,
		webURL:  strings.TrimRight(webURL, "/"),
		logger:  logger,
	}
}

// MovieURL returns the web page for a movie
func (o *Opener) MovieURL(movieID string) (string, error) {
	if movieID == "" {
		return "", fmt.Errorf("no movie selected")
	}
	if _, err := url.Parse(o.webURL); err != nil || o.webURL == "" {
		return "", fmt.Errorf("invalid browser.web_url %q", o.webURL)
	}
	return o.webURL + "/movie/" + url.PathEscape(movieID), nil
}

// OpenMovie opens the web page for a movie
func (o *Opener) OpenMovie(movieID string) error {
	u, err := o.MovieURL(movieID)
	if err != nil {
		return err
	}
	return o.Open(u)
}

// Open opens a URL in the configured browser or the system default
func (o *Opener) Open(u string) error {
	if o.command != "" {
		return o.openConfigured(u)
	}
	return o.openDefault(u)
}

// openConfigured launches the configured browser, URL last
func (o *Opener) openConfigured(u string) error {
	// On macOS, GUI apps are usually not in PATH; go through 'open -a'
	if goos == "darwin" {
		if _, err := lookPath(o.command); err != nil {
			cmdArgs := []string{"-a", o.command}
			if len(o.args) > 0 {
				cmdArgs = append(cmdArgs, "--args")
				cmdArgs = append(cmdArgs, o.args...)
			}
			cmdArgs = append(cmdArgs, u)
			o.logger.Info("using macOS 'open -a' to launch browser", "app", o.command, "args", cmdArgs)
			return start("open", cmdArgs...)
		}
	}

	args := append(append([]string{}, o.args...), u)
	o.logger.Info("launching browser", "command", o.command, "args", args)
	if err := start(o.command, args...); err != nil {
		return fmt.Errorf("failed to launch %s: %w", o.command, err)
	}
	return nil
}

// openDefault opens the URL using the system default handler
func (o *Opener) openDefault(u string) error {
	var name string
	var args []string

	switch goos {
	case "darwin":
		name, args = "open", []string{u}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", u}
	default:
		// Linux and other Unix-like systems
		name, args = "xdg-open", []string{u}
	}

	o.logger.Info("opening with system default", "os", goos, "url", u)
	if err := start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", u, err)
	}
	return nil
}
