package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "workoutctl dev") || !strings.Contains(out, "commit: none") {
		t.Errorf("unexpected version output: %s", out)
	}
}

func TestRootCmdHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, sub := range []string{"import", "preview", "workouts", "delete", "rest", "timer", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q subcommand", sub)
		}
	}
}

func TestRestCmd(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"90s"}, `"90s" = 90 seconds (1:30)`},
		{[]string{"2min"}, `"2min" = 120 seconds (2:00)`},
		{[]string{"45"}, `"45" = 45 seconds (45s)`},
		{[]string{"none"}, `"none" = 0 seconds (0s)`},
	}
	for _, tt := range tests {
		out, err := run(t, append([]string{"rest"}, tt.args...)...)
		if err != nil {
			t.Fatalf("rest %v: %v", tt.args, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("rest %v = %q, want %q", tt.args, out, tt.want)
		}
	}
}

func TestTimerCmd(t *testing.T) {
	out, err := run(t, "timer", "3", "--tick", "1ms")
	if err != nil {
		t.Fatalf("timer failed: %v", err)
	}
	if !strings.Contains(out, "3s") || !strings.Contains(out, "Rest over.") {
		t.Errorf("unexpected timer output: %q", out)
	}

	if _, err := run(t, "timer", "none"); err == nil {
		t.Error("expected error for a rest without duration")
	}
}

func writeWorkspace(t *testing.T) (configDir, csvPath string) {
	t.Helper()
	dir := t.TempDir()
	cfg := "database:\n" +
		"  driver: sqlite\n" +
		"  dsn: " + filepath.Join(dir, "tracker.db") + "\n" +
		"log:\n" +
		"  level: error\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	csvPath = filepath.Join(dir, "upper body.csv")
	csv := "#,Exercise,Reps,Speed,Rest,Sets,Notes,Video\n" +
		"1,Push Up - standard form,10,medium,60s,3,,https://video/pushup\n" +
		"2,Row,12,slow,90s,4,,\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, csvPath
}

func TestPreviewCmd(t *testing.T) {
	dir, csvPath := writeWorkspace(t)
	out, err := run(t, "--config", dir, "preview", csvPath)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !strings.Contains(out, "Push Up") || !strings.Contains(out, "60s (1:00)") {
		t.Errorf("unexpected preview output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "tracker.db")); !os.IsNotExist(err) {
		t.Error("preview should not open the database")
	}
}

func TestImportListDelete(t *testing.T) {
	dir, csvPath := writeWorkspace(t)

	out, err := run(t, "--config", dir, "import", csvPath)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	m := regexp.MustCompile(`Imported "upper body" \(([^)]+)\): 2 exercises`).FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("unexpected import output: %s", out)
	}
	id := m[1]

	out, err = run(t, "--config", dir, "workouts")
	if err != nil {
		t.Fatalf("workouts failed: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "upper body") {
		t.Errorf("workout missing from list: %s", out)
	}

	out, err = run(t, "--config", dir, "workouts", id)
	if err != nil {
		t.Fatalf("workouts %s failed: %v", id, err)
	}
	if !strings.Contains(out, "Row") {
		t.Errorf("exercise missing from detail: %s", out)
	}

	out, err = run(t, "--config", dir, "delete", id)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out, "(2 exercises)") {
		t.Errorf("unexpected delete output: %s", out)
	}

	out, err = run(t, "--config", dir, "workouts")
	if err != nil {
		t.Fatalf("workouts failed: %v", err)
	}
	if !strings.Contains(out, "No workouts.") {
		t.Errorf("expected empty list, got: %s", out)
	}

	if _, err := run(t, "--config", dir, "delete", id); err == nil {
		t.Error("expected error deleting a missing workout")
	}
}
