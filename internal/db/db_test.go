package db

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skills-dossier/internal/types"
)

func TestStableUserID(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jean@example.com", "user_amVhbkBleGFtcGxlLmNv"},
		{"  Jean@Example.COM ", "user_amVhbkBleGFtcGxlLmNv"},
		{"a@b.c", "user_YUBiLmM"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, StableUserID(tt.email))
		})
	}
}

func TestStableUserID_NoUnsafeCharacters(t *testing.T) {
	for _, email := range []string{"??>>@x.io", "~~~~@~~.fr", "zzzzzzzzzzzzzzzzzzzzzzzz@example.org"} {
		id := StableUserID(email)
		assert.NotContains(t, id, "/")
		assert.NotContains(t, id, "+")
		assert.NotContains(t, id, "=")
		assert.LessOrEqual(t, len(id), 25)
	}
}

func TestUser_ToAPI(t *testing.T) {
	var nilUser *User
	assert.Nil(t, nilUser.ToAPI())

	u := &User{ID: "user_x", Email: "x@y.z", PasswordHash: "secret"}
	api := u.ToAPI()
	assert.Equal(t, "user_x", api.ID)
	assert.Equal(t, []string{}, api.Roles)

	data, err := json.Marshal(api)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestBuildProfileRows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	payload := &types.ProfilePayload{
		FullName:          " Jean Dupont ",
		Roles:             []string{"Développeur", " ", "Architecte "},
		GeneralExpertises: []string{"Backend", ""},
		Tools:             []string{"", "Go", "PostgreSQL"},
		Experiences: []types.ExperiencePayload{
			{Company: "Acme", StartDate: "2019", EndDate: "", JobTitle: "Dev", ToolsUsed: []string{"Go", " "}},
			{Company: "  ", JobTitle: "ignored"},
		},
		Educations: []types.EducationPayload{
			{DegreeOrCertification: "Master", Year: "2018"},
			{DegreeOrCertification: "Licence", Year: "bientôt"},
			{DegreeOrCertification: "", Year: "2010"},
		},
	}

	rows := buildProfileRows("user_abc", payload, now)

	p := rows.profile
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "user_abc", p.ManagerID)
	assert.Equal(t, "Jean Dupont", p.FullName)
	assert.Equal(t, []string{"Développeur", "Architecte"}, p.Roles)
	assert.Equal(t, "Développeur / Architecte", p.JobTitle)
	assert.Equal(t, now, p.CreatedAt)

	require.Len(t, rows.expertises, 1)
	assert.Equal(t, "Backend", rows.expertises[0].Expertise)
	require.Len(t, rows.tools, 2)
	assert.Equal(t, "Go", rows.tools[0].ToolName)

	require.Len(t, rows.experiences, 1)
	exp := rows.experiences[0]
	assert.Equal(t, p.ID, exp.ProfileID)
	require.NotNil(t, exp.StartDate)
	assert.Equal(t, "2019", *exp.StartDate)
	assert.Nil(t, exp.EndDate)
	assert.Equal(t, []string{"Go"}, exp.ToolsUsed)
	assert.Equal(t, []string{}, exp.Expertises)

	require.Len(t, rows.educations, 2)
	require.NotNil(t, rows.educations[0].Year)
	assert.Equal(t, 2018, *rows.educations[0].Year)
	assert.Nil(t, rows.educations[1].Year)
}

func TestBuildProfileRows_Empty(t *testing.T) {
	rows := buildProfileRows("user_abc", &types.ProfilePayload{FullName: "X"}, time.Now())

	assert.Empty(t, rows.expertises)
	assert.Empty(t, rows.experiences)
	assert.Equal(t, "", rows.profile.JobTitle)
	assert.Equal(t, []string{}, rows.profile.Roles)
}

func TestAttachDetails(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	profiles := []types.Profile{{ID: a}, {ID: b}}

	attachDetails(profiles,
		[]types.GeneralExpertise{{ProfileID: a, Expertise: "one"}, {ProfileID: a, Expertise: "two"}},
		[]types.Tool{{ProfileID: b, ToolName: "Go"}, {ProfileID: uuid.New(), ToolName: "orphan"}},
		nil,
		[]types.Education{{ProfileID: b, DegreeOrCertification: "Master"}},
	)

	require.Len(t, profiles[0].GeneralExpertises, 2)
	assert.Equal(t, "two", profiles[0].GeneralExpertises[1].Expertise)
	assert.Equal(t, []types.Tool{}, profiles[0].Tools)
	require.Len(t, profiles[1].Tools, 1)
	assert.Equal(t, []types.Experience{}, profiles[1].Experiences)
	require.Len(t, profiles[1].Educations, 1)
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Nil(t, nullIfEmpty("   "))
	v := nullIfEmpty(" 2020-01-01 ")
	require.NotNil(t, v)
	assert.Equal(t, "2020-01-01", *v)
}

func TestDecodeStrings(t *testing.T) {
	assert.Equal(t, []string{}, decodeStrings(nil))
	assert.Equal(t, []string{}, decodeStrings([]byte("null")))
	assert.Equal(t, []string{}, decodeStrings([]byte("{bad")))
	assert.Equal(t, []string{"a", "b"}, decodeStrings([]byte(`["a","b"]`)))
}

func TestEncodeStrings(t *testing.T) {
	tests := []struct {
		name     string
		items    []string
		expected string
	}{
		{"nil list", nil, `[]`},
		{"empty list", []string{}, `[]`},
		{"values", []string{"Go", "Développement"}, `["Go","Développement"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := encodeStrings(tt.items)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(raw))
			assert.ElementsMatch(t, tt.items, decodeStrings(raw))
		})
	}
}

func TestSchema_DeclaresTables(t *testing.T) {
	schema := Schema()
	for _, table := range []string{"users", "user_roles", "profiles", "general_expertises", "tools", "experiences", "educations"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
