package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvExtraFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "local.env")
	if err := os.WriteFile(path, []byte("FOCUSFLOW_TEST_A=from-file\nFOCUSFLOW_TEST_B=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv(EnvFilesVar, " "+path+" ,")
	t.Setenv("FOCUSFLOW_TEST_B", "from-env")
	t.Setenv("FOCUSFLOW_TEST_A", "")
	os.Unsetenv("FOCUSFLOW_TEST_A")

	LoadEnv()

	if got := os.Getenv("FOCUSFLOW_TEST_A"); got != "from-file" {
		t.Errorf("FOCUSFLOW_TEST_A = %q, want from-file", got)
	}
	if got := os.Getenv("FOCUSFLOW_TEST_B"); got != "from-env" {
		t.Errorf("FOCUSFLOW_TEST_B = %q, want existing value kept", got)
	}
}

func TestEnvFilesSkipsBlanks(t *testing.T) {
	t.Setenv(EnvFilesVar, "a.env, ,b.env")
	got := envFiles()
	if len(got) != 2 || got[0] != "a.env" || got[1] != "b.env" {
		t.Errorf("envFiles = %v", got)
	}
}
