package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CarsSchema is a small Spider-style schema used across tests.
const CarsSchema = `[
  {
    "db_id": "car_1",
    "table_names": ["cars", "car makers"],
    "table_names_original": ["cars_data", "car_makers"],
    "column_names": [[-1, "*"], [0, "id"], [0, "cylinders"], [0, "year"], [0, "model"], [1, "id"], [1, "maker"]],
    "column_names_original": [[-1, "*"], [0, "Id"], [0, "Cylinders"], [0, "Year"], [0, "Model"], [1, "Id"], [1, "Maker"]],
    "column_types": ["text", "number", "number", "number", "text", "number", "text"]
  }
]`

// PetsSchema is a second schema, in YAML.
const PetsSchema = `
- db_id: pets_1
  table_names: [pets]
  table_names_original: [Pets]
  column_names:
    - [-1, "*"]
    - [0, pet age]
  column_names_original:
    - [-1, "*"]
    - [0, pet_age]
`

// IsAGraph maps phrase keys to column labels.
const IsAGraph = `{"red_car": ["model"], "toyota": ["maker"]}`

// RelatedToGraph maps phrase keys to column labels.
const RelatedToGraph = `{"engine": ["cylinders"]}`

// Fixtures are the paths of the files written by WriteFixtures.
type Fixtures struct {
	Dir        string
	SchemasDir string
	IsA        string
	RelatedTo  string
}

// WriteFixtures writes the schemas and concept graphs into a temporary directory.
func WriteFixtures(t testing.TB) Fixtures {
	t.Helper()
	dir := t.TempDir()
	f := Fixtures{
		Dir:        dir,
		SchemasDir: filepath.Join(dir, "schemas"),
		IsA:        filepath.Join(dir, "concepts", "english_IsA.json"),
		RelatedTo:  filepath.Join(dir, "concepts", "english_RelatedTo.json"),
	}

	write(t, filepath.Join(f.SchemasDir, "tables.json"), CarsSchema)
	write(t, filepath.Join(f.SchemasDir, "pets.yaml"), PetsSchema)
	write(t, f.IsA, IsAGraph)
	write(t, f.RelatedTo, RelatedToGraph)
	return f
}

func write(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
