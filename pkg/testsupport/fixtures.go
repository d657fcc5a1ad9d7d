package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// UpdateGoldenEnv rewrites golden files instead of comparing when set to a
// non-empty value.
const UpdateGoldenEnv = "UPDATE_GOLDEN"

// KeyScenario is one cache key expectation loaded from a JSON fixture.
// Arguments are decoded from JSON, so numbers arrive as float64 and objects as
// map[string]any.
type KeyScenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Args        []any  `json:"args"`
	ExpectedKey string `json:"expectedKey"`
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadKeyScenarios loads a {"scenarios": [...]} fixture and fails the test
// when it holds none.
func LoadKeyScenarios(t *testing.T, path string) []KeyScenario {
	t.Helper()

	var fixture struct {
		Scenarios []KeyScenario `json:"scenarios"`
	}
	LoadFixtureJSON(t, path, &fixture)
	if len(fixture.Scenarios) == 0 {
		t.Fatalf("no key scenarios in %s", path)
	}
	return fixture.Scenarios
}

// WriteGolden writes test output to a golden file, creating its directory.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual data with expected data from a golden file.
// The golden file is written instead when it does not exist or UPDATE_GOLDEN is set.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	if os.Getenv(UpdateGoldenEnv) != "" {
		WriteGolden(t, path, actual)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Logf("Golden file %s does not exist, creating it", path)
			WriteGolden(t, path, actual)
			return
		}
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// GoldenLines joins lines with a trailing newline, the layout of key golden files.
func GoldenLines(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
