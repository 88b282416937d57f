package host

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// configSubdir is the application directory used when no config dir override
// is given.
const configSubdir = "scripthost"

// ExpandPath resolves the host's script-path shorthands: a `~~/` prefix
// expands to the host config directory (configDir when non-empty, the XDG
// config home otherwise) and a `~/` prefix expands to the user's home
// directory. Anything else passes through unchanged.
func ExpandPath(path, configDir string) (string, error) {
	switch {
	case path == "~~" || strings.HasPrefix(path, "~~/"):
		if configDir == "" {
			configDir = filepath.Join(xdg.ConfigHome, configSubdir)
		}
		return filepath.Join(configDir, strings.TrimPrefix(path[2:], "/")), nil
	case path == "~" || strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
	default:
		return path, nil
	}
}
