package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deanthehandyman/Newleadsdaily/internal/model"
	"github.com/Deanthehandyman/Newleadsdaily/internal/store"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCSV(t *testing.T) {
	st := store.NewMem()
	path := writeCSV(t, `name,phone,email,address,lat,lng,is_handyman,is_starlink,is_smarthome
ACME PLUMBING,555-0100,info@acme.test,1 Main St,33.0,-95.0,1,0,0
jane's antennas,555-0101,,2 Elm St,33.1,-95.1,0,yes,0
Bad Row,,,,not-a-lat,-95.0,0,0,0
,,,,33.2,-95.2,1,0,0
`)

	res, err := ImportCSV(context.Background(), st, path, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 2, res.Skipped)

	user, err := st.CreateUser(context.Background(), &model.User{
		Name:        "Dean",
		Email:       "dean@example.com",
		HomeLat:     33.0,
		HomeLng:     -95.0,
		Categories:  model.Categories{Handyman: true, Starlink: true},
		MaxRadiusKm: 100,
	})
	require.NoError(t, err)

	// Shouty and lowercase names are normalized on the way in.
	leads, err := st.ListUnseenLeads(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	names := []string{leads[0].Name, leads[1].Name}
	assert.Contains(t, names, "Acme Plumbing")
	assert.Contains(t, names, "Jane's Antennas")
}

func TestImportCSVMissingColumn(t *testing.T) {
	st := store.NewMem()
	path := writeCSV(t, "name,lat\nAcme,33.0\n")

	_, err := ImportCSV(context.Background(), st, path, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "lng"`)
}

func TestImportCSVMissingFile(t *testing.T) {
	st := store.NewMem()
	_, err := ImportCSV(context.Background(), st, "/no/such/file.csv", 1)
	require.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ACME PLUMBING", "Acme Plumbing"},
		{"acme plumbing", "Acme Plumbing"},
		{"  acme  ", "Acme"},
		{"McAllister Roofing", "McAllister Roofing"},
		{"dean's handyman SERVICE", "dean's handyman SERVICE"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeName(tc.in), "input %q", tc.in)
	}
}
