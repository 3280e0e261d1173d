package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingest-service/internal/ingest/model"
	"ingest-service/internal/ingest/service"
)

func TestRun(t *testing.T) {
	run := service.Tally([]service.FileResult{
		{Source: "a.xlsx", Year: model.IntPtr(2025), Records: 4, Counts: model.Counts{Inserted: 3, Updated: 1},
			Sections: []service.SectionReport{{Title: "Perfil por Sexo"}}},
		{Source: "b.xlsx", NoData: true, Warnings: []string{"no data sections found"}},
		{Source: "c.xls", Err: errors.New("boom"), Error: "boom"},
	})

	var buf bytes.Buffer
	require.NoError(t, Run(&buf, run))
	out := buf.String()
	assert.Contains(t, out, "# Import Run")
	assert.Contains(t, out, "a.xlsx")
	assert.Contains(t, out, "2025")
	assert.Contains(t, out, "no data")
	assert.Contains(t, out, "failed: boom")
	assert.Contains(t, out, "b.xlsx: no data sections found")
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	id := &model.IdentificationRecord{Year: model.IntPtr(2025), Unit: model.StrPtr("Maceió"), ImportedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	err := Summary(&buf,
		[]model.SectionSummary{{Section: "perfil_por_sexo", Metrics: 2, MonthlySum: 12, TotalSum: 12, AvgTotal: 6}},
		model.Stats{Records: 2, Sections: 1, Metrics: 2, MonthlySum: 12},
		id,
	)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "perfil_por_sexo")
	assert.Contains(t, out, "6.00")
	assert.Contains(t, out, "Maceió")
	assert.Contains(t, out, "2025-03-01 10:00:00")

	buf.Reset()
	require.NoError(t, Summary(&buf, nil, model.Stats{}, nil))
	assert.Contains(t, buf.String(), "No consolidated data yet.")
}

func TestValidation(t *testing.T) {
	var buf bytes.Buffer
	rep := service.Report{
		Source:    "a.xlsx",
		Records:   1,
		Coverage:  0.25,
		Quality:   service.QualityLow,
		Sections:  []service.SectionReport{{Title: "Perfil por Sexo", FirstRow: 1, LastRow: 3, Records: 1}},
		Unmatched: []string{"Motivo do desligamento"},
	}
	require.NoError(t, Validation(&buf, rep))
	out := buf.String()
	assert.Contains(t, out, "Validation: a.xlsx")
	assert.Contains(t, out, "low")
	assert.Contains(t, out, "positional")
	assert.Contains(t, out, "2-4")
	assert.Contains(t, out, "Motivo do desligamento")
}
