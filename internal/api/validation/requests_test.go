package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-analyser/pkg/models"
)

func TestMatchingRequestValidation(t *testing.T) {
	v := New()

	valid := models.MatchingRequest{
		IAType:   "openai",
		IAKey:    "sk-test",
		Modele:   "gpt-4",
		Prompt:   "score",
		Candidat: json.RawMessage(`{"nom":"Jean"}`),
		Offres:   json.RawMessage(`[]`),
	}
	require.NoError(t, v.Struct(&valid))

	missing := valid
	missing.Offres = nil
	err := v.Struct(&missing)
	require.Error(t, err)
	assert.Equal(t, "missing required fields: offres", Describe(err))

	null := valid
	null.Candidat = json.RawMessage(`null`)
	err = v.Struct(&null)
	require.Error(t, err)
	assert.Equal(t, "invalid fields: candidat", Describe(err))
}

func TestAnalyzeFormValidation(t *testing.T) {
	v := New()

	form := models.AnalyzeCVForm{Prompt: "analyse", MistralURL: "http://ollama:11434/api/chat"}
	require.NoError(t, v.Struct(&form))

	form.MistralURL = "ftp://somewhere/chat"
	assert.Equal(t, "invalid fields: mistral_url", Describe(v.Struct(&form)))

	form = models.AnalyzeCVForm{}
	assert.Equal(t, "missing required fields: prompt", Describe(v.Struct(&form)))
}

func TestTokenRequestValidation(t *testing.T) {
	v := New()
	err := v.Struct(&models.TokenRequest{Username: "alice"})
	assert.Equal(t, "missing required fields: password", Describe(err))
}
