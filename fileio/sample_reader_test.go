package fileio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReplayLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replay.jsonl")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReplaySource(t *testing.T) {
	path := writeReplayLog(t,
		`{"user":"alice","app":"acad.exe","file_path":"C:/p/x.dwg","file_name":"x.dwg","timestamp":"2024-03-11T14:00:00+01:00","idle_seconds":2}`,
		`{"user":"alice","unknown":true,"timestamp":"2024-03-11T14:00:05+01:00"}`,
	)

	src, err := NewReplaySource(path)
	require.NoError(t, err)
	require.Equal(t, 2, src.Len())

	sample, ok, err := src.Sample()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", sample.User)
	assert.Equal(t, "acad.exe", sample.App)
	assert.Equal(t, "x.dwg", sample.FileName)

	idle, err := src.IdleSeconds()
	require.NoError(t, err)
	assert.Equal(t, 2.0, idle)
	assert.True(t, src.Now().Equal(sample.Timestamp))

	// Unknown records surface as ok=false, like a failed live probe.
	_, ok, err = src.Sample()
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = src.Sample()
	assert.ErrorIs(t, err, ErrReplayExhausted)
}

func TestReplaySource_SkipsMalformedLines(t *testing.T) {
	path := writeReplayLog(t,
		`not json at all`,
		``,
		`{"user":"alice","app":"acad.exe","timestamp":"2024-03-11T14:00:00Z"}`,
		`{"user":"alice","app":"acad.exe"}`,
	)

	src, err := NewReplaySource(path)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Len())
}

func TestReplaySource_NowBeforeFirstSample(t *testing.T) {
	ts := time.Date(2024, 3, 11, 14, 0, 0, 0, time.UTC)
	path := writeReplayLog(t,
		`{"user":"alice","app":"acad.exe","timestamp":"2024-03-11T14:00:00Z"}`,
	)

	src, err := NewReplaySource(path)
	require.NoError(t, err)
	assert.True(t, src.Now().Equal(ts))
}

func TestReplaySource_MissingFile(t *testing.T) {
	_, err := NewReplaySource(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}
