package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("header\n"), 0644))
	return path
}

func TestLeftoverHourlyBuckets(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "09-00_11_03_2024.csv")
	b := touch(t, dir, "14-00_11_03_2024.csv")
	current := touch(t, dir, "15-00_11_03_2024.csv")
	touch(t, dir, "alice_11_03_2024.csv")
	touch(t, dir, "notes.txt")

	found, err := LeftoverHourlyBuckets(dir, current)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, found)
}

func TestLeftoverDailyBuckets(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "14-00_11_03_2024.csv")
	alice := touch(t, dir, "alice_11_03_2024.csv")
	bob := touch(t, dir, "bob_10_03_2024.csv")
	touch(t, dir, "2024-alice.csv")
	touch(t, dir, "notes.txt")

	found, err := LeftoverDailyBuckets(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{alice, bob}, found)
}

func TestYearlyUserFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2023-alice.csv")
	touch(t, dir, "2024-alice.csv")
	touch(t, dir, "2024-bob.csv")
	touch(t, dir, "2024-projects.csv")
	touch(t, dir, "2024-alice.csv.bak")

	found, err := YearlyUserFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, YearlyUserFile{Path: filepath.Join(dir, "2023-alice.csv"), Year: 2023, User: "alice"}, found[0])
	assert.Equal(t, YearlyUserFile{Path: filepath.Join(dir, "2024-alice.csv"), Year: 2024, User: "alice"}, found[1])
	assert.Equal(t, YearlyUserFile{Path: filepath.Join(dir, "2024-bob.csv"), Year: 2024, User: "bob"}, found[2])
}

func TestYearlyUserFiles_MissingDir(t *testing.T) {
	found, err := YearlyUserFiles(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, found)
}
