package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileOverride names a variable whose value replaces the --env flag.
const EnvFileOverride = "BRILOAI_ENV_FILE"

// ErrEnvFileNotFound is returned when no candidate .env file could be loaded.
var ErrEnvFileNotFound = errors.New("env file not found")

// EnvLoader loads .env files with a predictable override order:
// $BRILOAI_ENV_FILE, the --env value, its basename, then the default path.
type EnvLoader struct {
	value       *string
	defaultPath string

	// Notices receives one line per loaded file. Defaults to stderr.
	Notices io.Writer
}

// AddEnvFlag registers an --env flag and returns an EnvLoader.
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}

	value := fs.String("env", defaultPath, description)
	return &EnvLoader{
		value:       value,
		defaultPath: defaultPath,
	}
}

// Load resolves and loads environment variables. Values from the loaded file
// override the process environment.
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", fmt.Errorf("env loader is nil")
	}

	if custom := strings.TrimSpace(os.Getenv(EnvFileOverride)); custom != "" {
		if err := godotenv.Overload(custom); err == nil {
			l.notice("Loaded environment from %s: %s", EnvFileOverride, custom)
			return custom, nil
		}
		l.notice("Warning: failed to load %s=%s", EnvFileOverride, custom)
	}

	for _, candidate := range l.candidates() {
		if err := godotenv.Overload(candidate); err == nil {
			l.notice("Loaded environment from: %s", candidate)
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrEnvFileNotFound, l.requested())
}

// requested is the path the --env flag points at.
func (l *EnvLoader) requested() string {
	requested := ""
	if l.value != nil {
		requested = strings.TrimSpace(*l.value)
	}
	if requested == "" {
		requested = l.defaultPath
	}
	return requested
}

func (l *EnvLoader) candidates() []string {
	requested := l.requested()
	out := []string{requested}
	if base := filepath.Base(requested); base != "" && base != requested {
		out = append(out, base)
	}
	if requested != l.defaultPath {
		out = append(out, l.defaultPath)
	}
	return out
}

func (l *EnvLoader) notice(format string, args ...any) {
	w := l.Notices
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format+"\n", args...)
}
