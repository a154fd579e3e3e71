package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemas_ValidJSON(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			source, err := Source(name)
			require.NoError(t, err)

			var v map[string]any
			require.NoError(t, json.Unmarshal([]byte(source), &v))
			assert.Equal(t, "http://json-schema.org/draft-07/schema#", v["$schema"])
		})
	}
}

func TestSource_Unknown(t *testing.T) {
	_, err := Source("nope")
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestValidate_Credentials(t *testing.T) {
	valid := `[{"name":"web_session","value":"abc","domain":".example.com","sameSite":null}]`
	assert.NoError(t, Validate(Credentials, []byte(valid)))

	missingDomain := `[{"name":"web_session","value":"abc"}]`
	err := Validate(Credentials, []byte(missingDomain))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, err.Error(), "credentials validation failed")

	assert.Error(t, Validate(Credentials, []byte(`[]`)))
	assert.Error(t, Validate(Credentials, []byte(`{"name":"x"}`)))
}

func TestValidate_Manifest(t *testing.T) {
	valid := `[
		{"id":1,"title":"a","url":"https://e.com/explore/1","images":[{"path":"d/a/x.jpg","url":"https://i/x"}],"text_file":""},
		{"id":2,"title":"b","url":"https://e.com/explore/2","images":[],"text_file":"d/b/text.txt"}
	]`
	assert.NoError(t, Validate(Manifest, []byte(valid)))
	assert.NoError(t, Validate(Manifest, []byte(`[]`)))

	noContent := `[{"id":1,"title":"a","url":"https://e.com/explore/1","images":[],"text_file":""}]`
	assert.Error(t, Validate(Manifest, []byte(noContent)))

	zeroID := `[{"id":0,"title":"a","url":"u","images":[],"text_file":"t"}]`
	assert.Error(t, Validate(Manifest, []byte(zeroID)))
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(Manifest, []byte(`{ invalid json }`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"a","value":"b","domain":"c"}]`), 0644))
	assert.NoError(t, ValidateFile(Credentials, path))

	err := ValidateFile(Credentials, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read")
}
