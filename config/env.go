package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFilesVar lists extra dotenv files, comma separated, loaded before .env.
const EnvFilesVar = "FOCUSFLOW_ENV_FILES"

// LoadEnv loads dotenv files into the process environment. Variables that
// are already set win over file values. A missing default .env is normal
// in deployed environments; a missing file named in FOCUSFLOW_ENV_FILES is not.
func LoadEnv() {
	for _, path := range envFiles() {
		if err := godotenv.Load(path); err != nil {
			Logger.Warnf("Error loading env file %s: %v", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			Logger.Debug("No .env file found, using environment variables")
			return
		}
		Logger.Warn("Error loading .env file, will use environment variables instead:", err)
	}
}

func envFiles() []string {
	var files []string
	for _, p := range strings.Split(os.Getenv(EnvFilesVar), ",") {
		if p = strings.TrimSpace(p); p != "" {
			files = append(files, p)
		}
	}
	return files
}
