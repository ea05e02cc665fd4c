package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"familymeter/internal/config"
	"familymeter/internal/services"
	"familymeter/internal/shared/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckCommand(t *testing.T) {
	source := testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV)

	out, _, err := execute(t, "check", "--source", source)
	require.NoError(t, err)

	assert.Contains(t, out, "people: 2, skipped rows: 1, observations: 3")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, []string{"all", "all", "2", "3"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"Štefan", "lineage", "0", "0"}, strings.Fields(lines[6]))
}

func TestCheckCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing table", "", "cannot open measurement table"},
		{"bad height", "priezvisko,meno,pohlavie,narodenie,vetva,01.01.2010\nA,B,žena,01.01.2000,Elena,abc\n", "is not a number"},
		{"unknown lineage", "priezvisko,meno,pohlavie,narodenie,vetva,01.01.2010\nA,B,žena,01.01.2000,Zuzana,120\n", "unknown group"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := filepath.Join(t.TempDir(), "missing.csv")
			if tt.content != "" {
				source = testutil.WriteMeasurementCSV(t, tt.content)
			}

			_, _, err := execute(t, "check", "--source", source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExportCommand(t *testing.T) {
	source := testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV)

	t.Run("csv to stdout", func(t *testing.T) {
		out, _, err := execute(t, "export", "--source", source)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.Equal(t, "first_name,last_name,sex,lineage,birth_date,age,height", lines[0])
		assert.Len(t, lines, 4)
	})

	t.Run("xlsx to file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.xlsx")
		_, _, err := execute(t, "export", "--source", source, "-f", "xlsx", "-o", target)
		require.NoError(t, err)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("merania")
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("csv to file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.csv")
		out, _, err := execute(t, "export", "--source", source, "-o", target)
		require.NoError(t, err)
		assert.Empty(t, out)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 4)
	})

	t.Run("output extension must match format", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "out.csv")
		_, _, err := execute(t, "export", "--source", source, "-f", "xlsx", "-o", target)
		assert.ErrorContains(t, err, "must end in .xlsx")
		assert.NoFileExists(t, target)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, "export", "--source", source, "-f", "pdf")
		assert.ErrorContains(t, err, "invalid format")
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteExport_PropagatesWriteErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Path = testutil.WriteMeasurementCSV(t, testutil.SampleMeasurementCSV)
	logger, _ := testutil.NewTestLogger(t)
	pipeline, err := services.NewPipelineService(cfg, logger)
	require.NoError(t, err)
	res, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	for _, format := range []string{"csv", "xlsx"} {
		t.Run(format, func(t *testing.T) {
			err := writeExport(failingWriter{}, format, res)
			assert.ErrorContains(t, err, "disk full")
		})
	}
}
