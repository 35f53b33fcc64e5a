// Package plugins provides exec-based plugin support for stackreport.
// Plugins are separate binaries named stackreport-<command> that are discovered
// and executed when an unknown command is invoked.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "stackreport-"

// EnvPluginDir overrides the per-user plugin directory.
const EnvPluginDir = "STACKREPORT_PLUGIN_DIR"

// KnownPlugins lists plugins that have official implementations available.
// These get special error messages describing what they do.
var KnownPlugins = map[string]string{
	"sourcemap": "Resolves reported frames to original sources using JavaScript source maps.",
}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// SearchDirs returns the directories searched before PATH, in order:
// the directory of the running binary, then $STACKREPORT_PLUGIN_DIR or
// ~/.stackreport/plugins.
func SearchDirs() []string {
	var dirs []string
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if dir := os.Getenv(EnvPluginDir); dir != "" {
		dirs = append(dirs, dir)
	} else if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".stackreport", "plugins"))
	}
	return dirs
}

// FindPlugin searches SearchDirs and then PATH for stackreport-<command>.
// Returns the full path to the plugin binary if found.
func FindPlugin(command string) (string, error) {
	name := Prefix + command

	for _, dir := range SearchDirs() {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("%w: %s", ErrPluginNotFound, name)
}

// Execute runs a plugin with the given arguments, connected to the
// process's standard streams, and returns the plugin's exit code.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...) // #nosec G204 -- plugin path comes from FindPlugin
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 2
	}

	return 0
}

// FormatNotFoundError returns a helpful error message when a plugin is not found.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"stackreport\"\n", command)

	if info, ok := KnownPlugins[command]; ok {
		fmt.Fprintf(&sb, "\n%q is available as a plugin.\n%s\n\nInstall the plugin binary as one of:\n", command, info)
	} else {
		sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	}

	for _, dir := range SearchDirs() {
		fmt.Fprintf(&sb, "  - %s\n", filepath.Join(dir, Prefix+command))
	}
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)

	sb.WriteString("\nRun 'stackreport --help' for usage.")

	return sb.String()
}

// isExecutable checks if path is a regular file with any execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
