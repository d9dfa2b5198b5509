package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HomeEnv overrides the directory used for caches and REPL history.
const HomeEnv = "LOX_HOME"

// ResolveHome returns $LOX_HOME, falling back to ~/.lox.
func ResolveHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		return filepath.Abs(home)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", HomeEnv, err)
	}
	return filepath.Join(userHome, ".lox"), nil
}
