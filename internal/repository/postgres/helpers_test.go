package postgres

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planmoni/depositwatch/internal/models"
	"github.com/planmoni/depositwatch/internal/repository"
)

var profileSeq int

// newProfile creates a profile row to satisfy foreign keys in other tables
func newProfile(t *testing.T, storage repository.Storage) models.Profile {
	t.Helper()

	profileSeq++
	profile, err := storage.Profile().CreateProfile(t.Context(), fmt.Sprintf("user%d@example.com", profileSeq), "Test")
	require.NoError(t, err, "profile has to be created ok")

	return profile
}
