package blueprint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sia-project/sia-api/internal/models"
)

func validDoc(t *testing.T) []byte {
	t.Helper()
	doc := models.Blueprint{
		ProgramCode:  "TSIS",
		Name:         "Tecnología en Sistemas",
		TotalCredits: 5,
		Blocks: []models.BlueprintBlock{
			{
				Period: 1,
				Courses: []models.BlueprintCourse{
					{Codes: models.CodeList{"TSIS 1010"}, Name: "Fundamentos", Credits: 3},
					{Codes: models.CodeList{"TSIS 1020", "TSIS 1021"}, Name: "Lógica", Credits: 2},
				},
			},
		},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestEmbeddedBlueprintIsConsistent(t *testing.T) {
	bp := Embedded()
	assert.Equal(t, EmbeddedID, bp.ID)
	assert.Equal(t, 140, bp.TotalCredits)
	assert.Len(t, bp.Blocks, 10)

	validation := Validate(bp)
	assert.True(t, validation.Valid, "embedded curriculum must pass its own checks: %v", validation.Errors)
	assert.Equal(t, 140, validation.Summary.CourseCreditSum)
}

func TestCatalogGetEmbedded(t *testing.T) {
	c := NewCatalog(t.TempDir())
	bp, err := c.Get(EmbeddedID)
	require.NoError(t, err)
	assert.Equal(t, "ISOF", bp.ProgramCode)
}

func TestCatalogRegisterAndGet(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(dir)

	validation, err := c.Register("tsis-2026", "Tecnología en Sistemas", validDoc(t))
	require.NoError(t, err)
	assert.True(t, validation.Valid)

	_, err = os.Stat(filepath.Join(dir, "tsis-2026.json"))
	assert.NoError(t, err)

	bp, err := c.Get("tsis-2026")
	require.NoError(t, err)
	assert.Equal(t, "TSIS", bp.ProgramCode)
	assert.Equal(t, "tsis-2026", bp.ID)

	metas, err := c.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, EmbeddedID, metas[0].ID)
	assert.Equal(t, "tsis-2026", metas[1].ID)
}

func TestCatalogRegisterReplacesExistingID(t *testing.T) {
	c := NewCatalog(t.TempDir())

	_, err := c.Register("tsis-2026", "Primera versión", validDoc(t))
	require.NoError(t, err)
	_, err = c.Register("tsis-2026", "Segunda versión", validDoc(t))
	require.NoError(t, err)

	metas, err := c.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "Segunda versión", metas[1].Name)
}

func TestCatalogRegisterRejectsReservedID(t *testing.T) {
	c := NewCatalog(t.TempDir())
	_, err := c.Register(EmbeddedID, "Impostora", validDoc(t))
	assert.ErrorIs(t, err, ErrReservedID)
}

func TestCatalogRegisterRejectsInvalidDocWithoutPersisting(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(dir)

	validation, err := c.Register("rota", "Malla rota", []byte(`{"program_code":"X"}`))
	require.NoError(t, err)
	assert.False(t, validation.Valid)

	_, statErr := os.Stat(filepath.Join(dir, "rota.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCatalogGetUnknownID(t *testing.T) {
	c := NewCatalog(t.TempDir())
	_, err := c.Get("nadie")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSimulateRejectsMalformedJSON(t *testing.T) {
	c := NewCatalog(t.TempDir())
	validation := c.Simulate([]byte(`{not json`))
	assert.False(t, validation.Valid)
	require.NotEmpty(t, validation.Errors)
}

func TestValidateCreditSumMismatch(t *testing.T) {
	bp := models.Blueprint{
		ProgramCode:  "TSIS",
		Name:         "Tecnología en Sistemas",
		TotalCredits: 10,
		Blocks: []models.BlueprintBlock{
			{Period: 1, Courses: []models.BlueprintCourse{
				{Codes: models.CodeList{"TSIS 1010"}, Name: "Fundamentos", Credits: 3},
			}},
		},
	}
	validation := Validate(bp)
	assert.False(t, validation.Valid)
	assert.Equal(t, 3, validation.Summary.CourseCreditSum)
	assert.Equal(t, 10, validation.Summary.DeclaredCredits)
}

func TestValidateAcceptsAliasCodeList(t *testing.T) {
	var bp models.Blueprint
	raw := []byte(`{
		"program_code": "TSIS",
		"name": "Tecnología en Sistemas",
		"total_credits": 3,
		"blocks": [
			{"period": 1, "courses": [
				{"codes": ["ADMI 1070", "ADMI 2000"], "name": "Emprendimiento", "credits": 3}
			]}
		]
	}`)
	require.NoError(t, json.Unmarshal(raw, &bp))
	require.Len(t, bp.Blocks[0].Courses[0].Codes, 2)

	validation := Validate(bp)
	assert.True(t, validation.Valid, "%v", validation.Errors)
}
