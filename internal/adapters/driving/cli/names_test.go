package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nomina/internal/core/domain"
)

func newNamesMock() *mockNameService {
	return &mockNameService{
		names: []domain.ExtractedName{
			{Name: "Jerusalén", Type: domain.NameTypePlace},
			{Name: "Jesús", Type: domain.NameTypePerson},
			{Name: "Pedro", Type: domain.NameTypePerson},
		},
		refs: map[string][]domain.UnitReference{
			"Pedro": {
				{CollectionKey: "mateo", Group: 16, Unit: 16, Version: "rv1960"},
				{CollectionKey: "juan", Group: 1, Unit: 40, Version: "rv1960"},
			},
		},
	}
}

func TestNamesListCmd_ListsAll(t *testing.T) {
	out, err := runCLI(t, &Services{Names: newNamesMock()}, "names", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Jerusalén")
	assert.Contains(t, out, "Pedro")
	assert.Contains(t, out, "Total: 3 names")
}

func TestNamesListCmd_Filters(t *testing.T) {
	names := newNamesMock()

	out, err := runCLI(t, &Services{Names: names}, "names", "list", "--filter", "je", "--type", "PERSON")

	require.NoError(t, err)
	assert.Equal(t, domain.NameFilter{Query: "je", Type: domain.NameTypePerson}, names.lastFilter)
	assert.Contains(t, out, "Jesús")
	assert.NotContains(t, out, "Jerusalén")
}

func TestNamesListCmd_JSON(t *testing.T) {
	out, err := runCLI(t, &Services{Names: newNamesMock()}, "names", "list", "--json", "--type", "place")
	require.NoError(t, err)

	var got []domain.ExtractedName
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []domain.ExtractedName{{Name: "Jerusalén", Type: domain.NameTypePlace}}, got)
}

func TestNamesListCmd_JSONEmpty(t *testing.T) {
	out, err := runCLI(t, &Services{Names: &mockNameService{}}, "names", "list", "--json")

	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestNamesListCmd_InvalidType(t *testing.T) {
	_, err := runCLI(t, &Services{Names: newNamesMock()}, "names", "list", "--type", "deity")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestNamesRefsCmd(t *testing.T) {
	out, err := runCLI(t, &Services{Names: newNamesMock()}, "names", "refs", "Pedro")

	require.NoError(t, err)
	assert.Contains(t, out, "mateo 16:16")
	assert.Contains(t, out, "juan 1:40")
}

func TestNamesRefsCmd_Unknown(t *testing.T) {
	out, err := runCLI(t, &Services{Names: newNamesMock()}, "names", "refs", "Nadie")

	require.NoError(t, err)
	assert.Contains(t, out, "No units mention")
}

func TestNamesDeleteCmd_WithYes(t *testing.T) {
	names := newNamesMock()

	out, err := runCLI(t, &Services{Names: names}, "names", "delete", "Pedro", "--yes")

	require.NoError(t, err)
	assert.Equal(t, []string{"Pedro"}, names.deleted)
	assert.Contains(t, out, "Deleted 2 records")
}

func TestNamesDeleteCmd_Confirmed(t *testing.T) {
	withStdin(t, "y\n", true)
	names := newNamesMock()

	_, err := runCLI(t, &Services{Names: names}, "names", "delete", "Pedro")

	require.NoError(t, err)
	assert.Equal(t, []string{"Pedro"}, names.deleted)
}

func TestNamesDeleteCmd_Declined(t *testing.T) {
	withStdin(t, "n\n", true)
	names := newNamesMock()

	out, err := runCLI(t, &Services{Names: names}, "names", "delete", "Pedro")

	require.NoError(t, err)
	assert.Empty(t, names.deleted)
	assert.Contains(t, out, "Aborted.")
}

func TestNamesDeleteCmd_RefusesWithoutTerminal(t *testing.T) {
	withStdin(t, "", false)
	names := newNamesMock()

	_, err := runCLI(t, &Services{Names: names}, "names", "delete", "Pedro")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, names.deleted)
}
