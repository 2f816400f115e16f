package env

import (
	"os"
	"path/filepath"
)

var Daemon bool = false
var ListenPort int = 0

// (default: %USERPROFILE%/.ragstack on Windows, $HOME/.ragstack on Linux)
var RagstackDir string = GetRagstackDir()

/**
 * Get ragstack directory path
 * @returns {string} Returns ragstack directory path
 */
func GetRagstackDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".ragstack")
}

/**
 * Get path of the deployment state directory
 * @returns {string} Returns state directory path
 */
func StateDir() string {
	return filepath.Join(RagstackDir, "state")
}

/**
 * Get path of the log directory
 * @returns {string} Returns log directory path
 */
func LogDir() string {
	return filepath.Join(RagstackDir, "logs")
}
