package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/gomeson/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

const dirMode os.FileMode = 0o700

// Environment variables overriding the per-user directories.
var (
	envConfigDir = strings.ToUpper(pkg.Name) + "_CONFIG_DIR"
	envCacheDir  = strings.ToUpper(pkg.Name) + "_CACHE_DIR"
)

var debugBinary = regexp.MustCompile(`^__debug_bin\d*$`)

// appName names the per-user directories: the executable's base name without
// extension or leading dots. Binaries built by the debugger use pkg.Name.
var appName = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	name := filepath.Base(exe)
	name = strings.TrimLeft(strings.TrimSuffix(name, filepath.Ext(name)), ".")

	if name == "" || debugBinary.MatchString(name) {
		return pkg.Name
	}

	return name
})

// userDir returns the directory named by env, or appName under the platform
// directory from base, or appName under fallback in the home directory.
func userDir(env string, base func() (string, error), fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}

	dir, err := base()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return filepath.Join(".", "."+appName())
		}

		dir = filepath.Join(home, fallback)
	}

	return filepath.Join(dir, appName())
}

var (
	configDir = sync.OnceValue(func() string {
		return userDir(envConfigDir, os.UserConfigDir, ".config")
	})
	cacheDir = sync.OnceValue(func() string {
		return userDir(envCacheDir, os.UserCacheDir, ".cache")
	})
)

// configPath joins elem onto the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return err
		}
	}

	return nil
}
