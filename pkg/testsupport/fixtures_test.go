package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFixture(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	testContent := []byte("test fixture content")

	if err := os.WriteFile(testFile, testContent, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := LoadFixture(t, testFile)
	if string(result) != string(testContent) {
		t.Errorf("expected %q, got %q", testContent, result)
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.json")

	if err := os.WriteFile(testFile, []byte(`{"name":"test","value":42}`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	var result map[string]any
	LoadFixtureJSON(t, testFile, &result)

	if result["name"] != "test" {
		t.Errorf("expected name=test, got %v", result["name"])
	}
	if result["value"] != float64(42) { // JSON unmarshals numbers as float64
		t.Errorf("expected value=42, got %v", result["value"])
	}
}

func TestLoadKeyScenarios(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "keys.json")
	content := `{"scenarios":[{"name":"one","description":"a number","args":[1],"expectedKey":"args[1]::1"}]}`

	if err := os.WriteFile(testFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	scenarios := LoadKeyScenarios(t, testFile)
	if len(scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(scenarios))
	}

	sc := scenarios[0]
	if sc.Name != "one" || sc.ExpectedKey != "args[1]::1" {
		t.Errorf("unexpected scenario: %+v", sc)
	}
	if len(sc.Args) != 1 || sc.Args[0] != float64(1) {
		t.Errorf("expected args [1], got %v", sc.Args)
	}
}

func TestWriteGolden(t *testing.T) {
	tmpDir := t.TempDir()
	goldenFile := filepath.Join(tmpDir, "subdir", "test.golden")
	testContent := []byte("test golden content")

	WriteGolden(t, goldenFile, testContent)

	result, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("failed to read written golden file: %v", err)
	}

	if string(result) != string(testContent) {
		t.Errorf("expected %q, got %q", testContent, result)
	}
}

func TestCompareWithGolden(t *testing.T) {
	tmpDir := t.TempDir()
	goldenFile := filepath.Join(tmpDir, "test.golden")
	testContent := GoldenLines("args[1]::1", "args[1]::2")

	// Missing golden files are created.
	CompareWithGolden(t, goldenFile, testContent)

	result, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("failed to read created golden file: %v", err)
	}
	if string(result) != "args[1]::1\nargs[1]::2\n" {
		t.Errorf("unexpected golden content %q", result)
	}

	// Matching content passes.
	CompareWithGolden(t, goldenFile, testContent)
}

func TestCompareWithGolden_Update(t *testing.T) {
	tmpDir := t.TempDir()
	goldenFile := filepath.Join(tmpDir, "test.golden")
	WriteGolden(t, goldenFile, []byte("stale"))

	t.Setenv(UpdateGoldenEnv, "1")
	CompareWithGolden(t, goldenFile, []byte("fresh"))

	result := LoadFixture(t, goldenFile)
	if string(result) != "fresh" {
		t.Errorf("expected golden file to be rewritten, got %q", result)
	}
}

func TestFixturePath(t *testing.T) {
	result := FixturePath("test.json")
	expected := filepath.Join("testdata", "test.json")

	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestGoldenPath(t *testing.T) {
	result := GoldenPath("output.txt")
	expected := filepath.Join("testdata", "golden", "output.txt")

	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}
