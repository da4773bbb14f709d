package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectOf(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		expected string
	}{
		{"forward slash path", "C:/Projects/446-IMD3-3d/file.dwg", "446"},
		{"backslash path", `C:\Projects\446-IMD3-3d\file.dwg`, "446"},
		{"mixed separators", `C:/Projects\512-Tower/model.pln`, "512"},
		{"pattern on leaf", "C:/scratch/1024-notes.txt", "1024"},
		{"two digits only", "C:/Projects/12-XYZ/file.dwg", "Unknown"},
		{"digits not at segment start", "C:/Projects/X446-IMD3/file.dwg", "Unknown"},
		{"digits without dash", "C:/Projects/446IMD3/file.dwg", "Unknown"},
		{"bare file name", "446-plan.pln", "446"},
		{"no file placeholder", "-", "Unknown"},
		{"empty identity", "", "Unknown"},
		{"first matching segment wins", "C:/300-Archive/446-IMD3/f.dwg", "300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProjectOf(tt.identity))
		})
	}
}
