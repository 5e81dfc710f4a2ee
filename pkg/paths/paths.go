// Package paths centralizes filesystem path resolution for tagfarm:
// config-file discovery, the log file location, and home expansion.
// It follows the XDG Base Directory specification via adrg/xdg.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/tagfarm/pkg/errors"
)

const (
	// AppDirName is the directory name used under XDG base directories
	AppDirName = "tagfarm"

	// LogFileName is the name of the log file
	LogFileName = "tagfarm.log"
)

// configFileNames are the file names probed during config discovery,
// in preference order.
var configFileNames = []string{"tagfarm.yaml", "tagfarm.yml", "tagfarm.toml"}

// FindConfig resolves the configuration file to use. An explicit path
// wins and must exist; otherwise the current directory is probed, then
// the XDG config directories ($XDG_CONFIG_HOME/tagfarm/ and friends).
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		expanded, err := ExpandHome(explicit)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(expanded); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad,
				"config file %q not found", explicit)
		}
		return expanded, nil
	}

	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	for _, name := range configFileNames {
		if path, err := xdg.SearchConfigFile(filepath.Join(AppDirName, name)); err == nil {
			return path, nil
		}
	}

	return "", errors.Newf(errors.ErrConfigLoad,
		"no config file found; looked for %s in the current directory and %s",
		strings.Join(configFileNames, ", "),
		filepath.Join(xdg.ConfigHome, AppDirName))
}

// DefaultConfigPath is where `tagfarm init` writes its sample config
// when no output path is given.
func DefaultConfigPath() string {
	return configFileNames[0]
}

// LogFilePath returns the log file location under the XDG state directory.
func LogFilePath() string {
	return filepath.Join(xdg.StateHome, AppDirName, LogFileName)
}

// ExpandHome expands a leading ~ or ~/ in path to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInvalidInput,
				"cannot expand ~: home directory unknown")
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
