package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileValidator_ValidateSourceFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		errorContains string
	}{
		{
			name: "csv table",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "rodinny_merac.csv", "priezvisko,meno\n")
			},
		},
		{
			name: "txt table with upper case extension",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "MERANIA.TXT", "priezvisko,meno\n")
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "rodinny_merac.csv")
			},
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			errorContains: "is a directory",
		},
		{
			name: "spreadsheet instead of text",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "rodinny_merac.xlsx", "PK")
			},
			errorContains: "not a delimited text file",
		},
		{
			name: "lock file",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "~$rodinny_merac.csv", "x")
			},
			errorContains: "lock file",
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				return writeFile(t, t.TempDir(), "rodinny_merac.csv", "")
			},
			errorContains: "is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestValidator().ValidateSourceFile(tt.setupFunc(t))
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateSourceFile_WrapsNotExist(t *testing.T) {
	err := newTestValidator().ValidateSourceFile(filepath.Join(t.TempDir(), "x.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		exts          []string
		errorContains string
	}{
		{
			name: "new file in existing directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "out.xlsx")
			},
			exts: []string{".xlsx"},
		},
		{
			name: "creates missing parent directories",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "exports", "2026", "out.csv")
			},
			exts: []string{".csv"},
		},
		{
			name: "any extension when none required",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "out.dat")
			},
		},
		{
			name: "wrong extension",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "out.csv")
			},
			exts:          []string{".xlsx"},
			errorContains: "must end in .xlsx",
		},
		{
			name: "directory as output",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "out.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			exts:          []string{".csv"},
			errorContains: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupFunc(t)
			err := newTestValidator().ValidateOutputFile(path, tt.exts...)
			if tt.errorContains == "" {
				require.NoError(t, err)
				assert.DirExists(t, filepath.Dir(path))
				assert.NoFileExists(t, filepath.Join(filepath.Dir(path), ".write_test"))
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
