package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/croncommander/cc-jobparse/internal/diag"
	"github.com/croncommander/cc-jobparse/internal/taskjob"
	"github.com/croncommander/cc-jobparse/internal/testutil"
)

func init() {
	pterm.DisableColor()
}

// sampleResults decodes the shared XML fixture and a legacy job, then adds
// one failure.
func sampleResults(t *testing.T) []result {
	t.Helper()

	xmlDesc, err := taskjob.Decode(`C:\Windows\Tasks\RotateLogs.xml`, []byte(testutil.TaskXML))
	require.NoError(t, err)

	job := testutil.NewJob()
	job.Application = `C:\Backup\run.exe`
	job.Parameters = "/full"
	job.Author = `CORP\ops`
	job.Triggers = []testutil.Trigger{{
		BeginYear: 2024, BeginMonth: 1, BeginDay: 2,
		StartHour: 3, StartMinute: 30,
		Type:     testutil.TriggerDaily,
		Specific: [3]uint16{1},
	}}
	binDesc, err := taskjob.Decode("Backup.job", job.Bytes())
	require.NoError(t, err)

	_, decodeErr := taskjob.Decode("broken.job", []byte("not a job"))
	require.Error(t, decodeErr)

	return []result{
		{Path: binDesc.SourcePath, Descriptor: binDesc},
		{Path: xmlDesc.SourcePath, Descriptor: xmlDesc},
		{Path: "broken.job", Err: decodeErr},
	}
}

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    reportFormat
		wantErr bool
	}{
		{"text", formatText, false},
		{"JSON", formatJSON, false},
		{" yaml ", formatYAML, false},
		{"toml", formatTOML, false},
		{"", formatText, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseReportFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, diag.Hint(err), "json")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteTextReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatText, sampleResults(t)))
	out := buf.String()

	assert.Contains(t, out, "Backup [binary]")
	assert.Contains(t, out, `C:\Backup\run.exe /full`)
	assert.Contains(t, out, "daily from 2024-01-02T03:30:00 every 1 day(s)")
	assert.Contains(t, out, "Windows XP")
	assert.Contains(t, out, "NORMAL_PRIORITY_CLASS")
	assert.Contains(t, out, "(0x00041303)")
	assert.Contains(t, out, "RotateLogs [xml]")
	assert.Contains(t, out, `\Maintenance\RotateLogs`)
	assert.Contains(t, out, "every 2 week(s) on Monday,Friday")
	assert.Contains(t, out, "logon")
	assert.Contains(t, out, "startup (disabled)")
	assert.Contains(t, out, "com handler")
	assert.Contains(t, out, "✗ broken.job: unknown format")
	assert.Contains(t, out, "hint:")
	assert.True(t, strings.HasSuffix(out, "3 files, 2 decoded, 1 failed, 0 warnings\n"), out)
}

func TestWriteJSONReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatJSON, sampleResults(t)))

	var rep struct {
		Files []struct {
			Path       string                 `json:"path"`
			Descriptor map[string]interface{} `json:"descriptor"`
			Error      string                 `json:"error"`
			Hint       string                 `json:"hint"`
		} `json:"files"`
		Summary batchSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rep))

	require.Len(t, rep.Files, 3)
	assert.Equal(t, "Backup", rep.Files[0].Descriptor["name"])
	assert.Equal(t, "binary", rep.Files[0].Descriptor["format"])
	assert.Equal(t, "xml", rep.Files[1].Descriptor["format"])
	assert.Nil(t, rep.Files[2].Descriptor)
	assert.Contains(t, rep.Files[2].Error, "unknown format")
	assert.NotEmpty(t, rep.Files[2].Hint)
	assert.Equal(t, batchSummary{Files: 3, Decoded: 2, Failed: 1}, rep.Summary)
}

func TestWriteYAMLReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatYAML, sampleResults(t)))

	var rep map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &rep))

	files := rep["files"].([]interface{})
	require.Len(t, files, 3)
	xmlFile := files[1].(map[string]interface{})
	desc := xmlFile["descriptor"].(map[string]interface{})
	assert.Equal(t, "RotateLogs", desc["name"])
	triggers := desc["triggers"].([]interface{})
	first := triggers[0].(map[string]interface{})
	assert.Equal(t, "weekly", first["kind"])
	assert.Equal(t, "Monday,Friday", first["schedule"].(map[string]interface{})["days_of_week"])

	summary := rep["summary"].(map[string]interface{})
	assert.Equal(t, 1, summary["failed"])
}

func TestWriteTOMLReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatTOML, sampleResults(t)))

	var rep map[string]interface{}
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &rep), buf.String())

	files := rep["files"].([]interface{})
	require.Len(t, files, 3)
	bin := files[0].(map[string]interface{})["descriptor"].(map[string]interface{})
	assert.Equal(t, "Backup", bin["name"])
	assert.Equal(t, "binary", bin["format"])

	summary := rep["summary"].(map[string]interface{})
	assert.Equal(t, int64(3), summary["files"])
}

func TestDescribeScheduleUnknown(t *testing.T) {
	results := sampleResults(t)
	var buf bytes.Buffer
	assert.NoError(t, writeText(&buf, results[2:]))
	assert.True(t, errors.Is(results[2].Err, diag.ErrFormatUnknown))
}
