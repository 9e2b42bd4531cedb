package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperengineering/sage"
)

// testEnv points the CLI at a temporary database and resets global flag
// state between tests.
func testEnv(t *testing.T) {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv("SAGE_HOME", tmpDir)
	t.Setenv("SAGE_DB_PATH", filepath.Join(tmpDir, "test.db"))
	t.Setenv("SAGE_STORE", "")
	t.Setenv("SAGE_SOURCE_ID", "test-client")
	t.Setenv("SAGE_USER", "test-learner")
	t.Setenv("SAGE_DEBUG", "")
	t.Setenv("SAGE_DEBUG_LOG", "")

	resetFlags := func() {
		cfgDBPath = ""
		cfgStore = ""
		cfgUser = ""
		outputJSON = false
		learnerQuiet = false
		observeContentType = ""
		observeEngagement = 50
		observeCompletion = 100
		observeTimeSpent = 0
		reviewResponseTime = 0
		scheduleMinutes = 30
		recommendMax = 5
		recommendMaxDuration = 0
		recommendTopics = nil
		recommendTypes = nil
		recommendDifficulty = 0
		recommendExclude = nil
		recommendPrereqs = false
		contentConcept = ""
		contentTopic = ""
		contentDifficulty = 5
		contentDuration = 0
		contentLoad = 0
		contentPrereqs = nil
		contentTags = nil
		contentVariants = nil
		statsHealth = false
	}
	resetFlags()
	t.Cleanup(resetFlags)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestCLI_Help_ListsAllCommands(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedCommands := []string{
		"learner", "observe", "session", "review", "schedule", "recommend",
		"analyze", "retention", "calibrate", "content", "stats", "export",
		"import", "harness", "store", "version",
	}
	for _, cmd := range expectedCommands {
		if !strings.Contains(output, cmd) {
			t.Errorf("--help output should contain %q command", cmd)
		}
	}
}

func TestCLI_LearnerInit_Quiet(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "learner", "init", "--quiet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id := strings.TrimSpace(output)
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("quiet output should be a bare UUID, got: %q", id)
	}
}

func TestCLI_LearnerInit_JSON(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "learner", "init", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output should be valid JSON: %v", err)
	}
	if result["user_id"] == "" {
		t.Error("JSON should have 'user_id' field")
	}
}

func TestCLI_Observe_RecordsAndShowsProfile(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "observe", "video_watched",
		"--content-type", "visual", "--engagement", "85", "--completion", "95", "--time-spent", "300")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "Recorded video_watched") {
		t.Errorf("output should confirm the recording, got: %s", output)
	}
	if !strings.Contains(output, "Style: visual") {
		t.Errorf("output should show the detected style, got: %s", output)
	}
}

func TestCLI_Observe_RequiresContentType(t *testing.T) {
	testEnv(t)

	_, err := runCLI(t, "observe", "video_watched")
	if err == nil {
		t.Fatal("expected error for missing --content-type")
	}
}

func TestCLI_Observe_MissingUser(t *testing.T) {
	testEnv(t)
	t.Setenv("SAGE_USER", "")

	_, err := runCLI(t, "observe", "video_watched", "--content-type", "visual")
	if err == nil {
		t.Fatal("expected error for missing learner ID")
	}
	if !strings.Contains(err.Error(), "SAGE_USER") {
		t.Errorf("error should mention SAGE_USER, got: %v", err)
	}
}

func TestCLI_ContentAddAndList(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "content", "add", "algebra-101",
		"--concept", "Linear equations", "--topic", "algebra", "--difficulty", "4",
		"--variants", "visual:video:12,reading:article:20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Added algebra-101") {
		t.Errorf("output should confirm the add, got: %s", output)
	}

	output, err = runCLI(t, "content", "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "algebra-101") || !strings.Contains(output, "Linear equations") {
		t.Errorf("list should show the added item, got: %s", output)
	}
}

func TestCLI_ContentShow(t *testing.T) {
	testEnv(t)

	if _, err := runCLI(t, "content", "add", "algebra-101",
		"--concept", "Linear equations", "--topic", "algebra",
		"--variants", "visual:video:12", "--tags", "intro"); err != nil {
		t.Fatalf("content add: %v", err)
	}

	output, err := runCLI(t, "content", "show", "algebra-101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Linear equations", "Topic:      algebra", "Variant:", "intro"} {
		if !strings.Contains(output, want) {
			t.Errorf("show output should contain %q, got: %s", want, output)
		}
	}

	if _, err := runCLI(t, "content", "show", "no-such-id"); err == nil {
		t.Fatal("expected error for unknown content ID")
	}
}

func TestCLI_ContentAdd_InvalidVariant(t *testing.T) {
	testEnv(t)

	_, err := runCLI(t, "content", "add", "x", "--concept", "X", "--variants", "visual-video")
	if err == nil {
		t.Fatal("expected error for malformed variant spec")
	}
	if !strings.Contains(err.Error(), "style:format:minutes") {
		t.Errorf("error should describe the expected format, got: %v", err)
	}
}

func TestCLI_ContentAdd_InvalidDifficulty(t *testing.T) {
	testEnv(t)

	_, err := runCLI(t, "content", "add", "x", "--concept", "X", "--difficulty", "42")
	if err == nil {
		t.Fatal("expected error for out-of-range difficulty")
	}
	if !strings.Contains(err.Error(), "between 1 and 10") {
		t.Errorf("error should state the valid range, got: %v", err)
	}
}

func TestCLI_Review_CreatesCard(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "review", "algebra-101", "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Reviewed algebra-101") {
		t.Errorf("output should confirm the review, got: %s", output)
	}
	if !strings.Contains(output, "in 1 day(s)") {
		t.Errorf("first review should schedule one day out, got: %s", output)
	}
}

func TestCLI_Review_InvalidQuality(t *testing.T) {
	testEnv(t)

	if _, err := runCLI(t, "review", "algebra-101", "nine"); err == nil {
		t.Fatal("expected error for non-integer quality")
	}
	if _, err := runCLI(t, "review", "algebra-101", "6"); err == nil {
		t.Fatal("expected error for out-of-range quality")
	}
}

func TestCLI_Schedule_Empty(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "schedule")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "No cards due") {
		t.Errorf("output should indicate empty schedule, got: %s", output)
	}
}

func TestCLI_Recommend_EmptyPool(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "recommend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "No matching content") {
		t.Errorf("output should indicate empty pool, got: %s", output)
	}
}

func TestCLI_RecommendThenReviewByRef(t *testing.T) {
	testEnv(t)

	if _, err := runCLI(t, "content", "add", "algebra-101", "--concept", "Linear equations", "--difficulty", "4"); err != nil {
		t.Fatalf("content add: %v", err)
	}

	output, err := runCLI(t, "recommend", "--max", "1")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if !strings.Contains(output, "[S1] Linear equations") {
		t.Errorf("recommendation should carry a session ref, got: %s", output)
	}

	// Session refs do not survive across processes. The CLI builds a fresh
	// client per command, so the stale ref is refused rather than treated
	// as a content ID.
	_, err = runCLI(t, "review", "S1", "4")
	if err == nil {
		t.Fatal("expected error for stale session ref")
	}
	if !strings.Contains(err.Error(), "session reference") {
		t.Errorf("error should name the unresolved ref, got: %v", err)
	}
}

func TestCLI_Stats(t *testing.T) {
	testEnv(t)

	if _, err := runCLI(t, "content", "add", "algebra-101", "--concept", "Linear equations"); err != nil {
		t.Fatalf("content add: %v", err)
	}

	output, err := runCLI(t, "stats")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Content:    1") {
		t.Errorf("stats should count the content item, got: %s", output)
	}
	if !strings.Contains(output, "Schema:     1") {
		t.Errorf("stats should show the schema version, got: %s", output)
	}
}

func TestCLI_Stats_Health(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "stats", "--health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Store healthy") {
		t.Errorf("output should report health, got: %s", output)
	}
}

func TestCLI_Stats_JSON(t *testing.T) {
	testEnv(t)

	output, err := runCLI(t, "stats", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stats sage.StoreStats
	if err := json.Unmarshal([]byte(output), &stats); err != nil {
		t.Fatalf("output should be valid JSON: %v", err)
	}
	if !strings.Contains(output, `"schema_version"`) {
		t.Error("JSON should have 'schema_version' field (snake_case)")
	}
}

func TestCLI_ExportImport_RoundTrip(t *testing.T) {
	testEnv(t)

	if _, err := runCLI(t, "content", "add", "algebra-101", "--concept", "Linear equations"); err != nil {
		t.Fatalf("content add: %v", err)
	}
	if _, err := runCLI(t, "review", "algebra-101", "4"); err != nil {
		t.Fatalf("review: %v", err)
	}

	exportPath := filepath.Join(t.TempDir(), "export.jsonl")
	if _, err := runCLI(t, "export", exportPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Import into a second database.
	t.Setenv("SAGE_DB_PATH", filepath.Join(t.TempDir(), "other.db"))
	output, err := runCLI(t, "import", exportPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(output, "Imported") {
		t.Errorf("import should report counts, got: %s", output)
	}

	output, err = runCLI(t, "stats")
	if err != nil {
		t.Fatalf("stats after import: %v", err)
	}
	if !strings.Contains(output, "Cards:      1") {
		t.Errorf("imported card missing, got: %s", output)
	}
}

func TestCLI_Config_FlagOverridesEnv(t *testing.T) {
	testEnv(t)
	t.Setenv("SAGE_DB_PATH", "/env/path.db")

	flagPath := filepath.Join(t.TempDir(), "flag.db")
	cfgDBPath = flagPath

	cfg := loadConfig()
	if cfg.LocalPath != flagPath {
		t.Errorf("flag should override env, got LocalPath=%s, want %s", cfg.LocalPath, flagPath)
	}
}

func TestCLI_Config_EnvFallback(t *testing.T) {
	testEnv(t)

	envPath := "/env/fallback.db"
	t.Setenv("SAGE_DB_PATH", envPath)
	cfgDBPath = ""

	cfg := loadConfig()
	if cfg.LocalPath != envPath {
		t.Errorf("should use env when flag not set, got LocalPath=%s, want %s", cfg.LocalPath, envPath)
	}
}

func TestCLI_Config_SourceIDFromEnv(t *testing.T) {
	testEnv(t)
	t.Setenv("SAGE_SOURCE_ID", "my-client-id")

	cfg := loadConfig()
	if cfg.SourceID != "my-client-id" {
		t.Errorf("should load SourceID from env, got %s", cfg.SourceID)
	}
}
