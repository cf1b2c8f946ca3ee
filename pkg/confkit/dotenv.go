package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads a .env file into the process environment the first
// time it is called.
//
//   - NO_DOTENV=1 disables loading entirely.
//   - ENV_FILE names an explicit file.
//   - Otherwise every .env between this package and the module root is
//     loaded, nearest first.
//
// Variables already present in the environment win unless DOTENV_OVERLOAD=1.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}

	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}

	found := false
	walkToRoot(func(dir string) bool {
		_ = load(filepath.Join(dir, ".env"))
		found = true
		return isModuleRoot(dir)
	})
	if !found {
		_ = load(".env")
	}
}
