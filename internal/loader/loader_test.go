package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const petstore = `
openapi: 3.1.0
info:
  title: Petstore
  version: 1.0.0
servers:
  - url: https://api.example.com
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: A list of pets.
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
components:
  schemas:
    Pet:
      type: object
      properties:
        id: {type: integer}
        name: {type: string}
`

func TestLoad(t *testing.T) {
	result, err := Load([]byte(petstore), nil)
	require.NoError(t, err)

	require.Equal(t, "3.1.0", result.Version)
	require.Empty(t, result.Warnings)
	require.Equal(t, "Petstore", result.API.Title())
	require.Equal(t, "1.0.0", result.API.Version())

	paths, ok := result.API.Paths()
	require.True(t, ok)
	require.Equal(t, []string{"/pets"}, paths.Templates())
}

func TestLoadJSON(t *testing.T) {
	data := []byte(`{
		"openapi": "3.1.0",
		"info": {"title": "Minimal", "version": "0.1.0"},
		"paths": {}
	}`)
	result, err := Load(data, nil)
	require.NoError(t, err)
	require.Equal(t, "Minimal", result.API.Title())
}

func TestLoadUnsupportedVersion(t *testing.T) {
	data := []byte(`
swagger: "2.0"
info:
  title: Legacy
  version: 1.0.0
paths: {}
`)
	_, err := Load(data, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported OpenAPI version")
}

func TestLoadParseError(t *testing.T) {
	_, err := Load([]byte("{not valid"), nil)
	require.Error(t, err)
}

func TestLoadVersion30Warning(t *testing.T) {
	data := []byte(`
openapi: 3.0.3
info:
  title: Legacy
  version: 1.0.0
paths: {}
`)
	result, err := Load(data, &Options{SkipValidation: true})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "3.0.x")
}

func TestLoadSkipValidation(t *testing.T) {
	// Structurally parseable but schema-invalid; only passes when
	// validation is skipped.
	data := []byte(`
openapi: 3.1.0
info:
  title: Sloppy
  version: 1.0.0
paths:
  /things:
    get:
      responses: {}
`)
	result, err := Load(data, &Options{SkipValidation: true})
	require.NoError(t, err)
	require.Equal(t, "Sloppy", result.API.Title())
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "petstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petstore), 0644))

	result, err := LoadFile(path, nil)
	require.NoError(t, err)
	require.Equal(t, "Petstore", result.API.Title())
	require.Equal(t, []byte(petstore), result.RawData)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "reading spec file")
}
