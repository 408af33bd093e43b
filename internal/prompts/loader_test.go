package prompts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("pipeline.json", "validate-request")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "SAFETY")
	assert.Contains(t, prompt, "{{.Request}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("pipeline.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestMustGet_ValidPrompt(t *testing.T) {
	ClearCache()

	assert.NotPanics(t, func() {
		prompt := MustGet("pipeline.json", "classify-request")
		assert.NotEmpty(t, prompt)
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_NoPlaceholders(t *testing.T) {
	template := "No placeholders here"
	data := map[string]string{"Key": "Value"}

	result := Format(template, data)
	assert.Equal(t, template, result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"
	data := map[string]string{}

	result := Format(template, data)
	assert.Equal(t, template, result) // Placeholder remains
}

func TestRender_AllVariablesResolved(t *testing.T) {
	ClearCache()

	result, err := Render("pipeline.json", "validate-request", map[string]string{
		"Request": "Schedule a team meeting tomorrow at 3pm",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "Schedule a team meeting tomorrow at 3pm")
	assert.NotContains(t, result, "{{.")
}

func TestRender_MissingVariable(t *testing.T) {
	ClearCache()

	_, err := Render("pipeline.json", "extract-create", map[string]string{
		"Request": "Schedule a team meeting tomorrow at 3pm",
		// CurrentDateTime and Timezone deliberately absent
	})
	require.Error(t, err)

	var missing *MissingVariableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "CurrentDateTime", missing.Name)
	assert.Contains(t, err.Error(), "CurrentDateTime")
}

func TestRender_UnknownKey(t *testing.T) {
	ClearCache()

	_, err := Render("pipeline.json", "no-such-key", nil)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("pipeline.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "validate-request")
	assert.Contains(t, keys, "classify-request")
	assert.Contains(t, keys, "extract-create")
	assert.Contains(t, keys, "extract-lookup")
}

func TestCaching(t *testing.T) {
	ClearCache()

	// First call loads from file
	prompt1, err := Get("pipeline.json", "validate-request")
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get("pipeline.json", "validate-request")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
