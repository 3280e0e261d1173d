// Package report renders import runs, store summaries and validation
// reports as Markdown.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"ingest-service/internal/ingest/model"
	"ingest-service/internal/ingest/service"
)

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func year(y *int) string {
	if y == nil {
		return "-"
	}
	return strconv.Itoa(*y)
}

func str(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func fileStatus(f service.FileResult) string {
	switch {
	case f.Failed():
		return "failed: " + f.Error
	case f.NoData:
		return "no data"
	default:
		return "ok"
	}
}

// Run writes one row per file followed by the run totals.
func Run(w io.Writer, run service.RunResult) error {
	md := markdown.NewMarkdown(w)
	md.H1("Import Run")
	md.PlainText("")

	rows := make([][]string, 0, len(run.Files))
	for _, f := range run.Files {
		rows = append(rows, []string{
			f.Source,
			fileStatus(f),
			year(f.Year),
			strconv.Itoa(len(f.Sections)),
			strconv.Itoa(f.Records),
			strconv.Itoa(f.Counts.Inserted),
			strconv.Itoa(f.Counts.Updated),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Status", "Year", "Sections", "Records", "Inserted", "Updated"},
		Rows:   rows,
	})
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Succeeded", "No data", "Failed", "Inserted", "Updated"},
		Rows: [][]string{{
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.NoData),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Counts.Inserted),
			strconv.Itoa(run.Counts.Updated),
		}},
	})
	md.PlainText("")

	var warnings []string
	for _, f := range run.Files {
		for _, wmsg := range f.Warnings {
			warnings = append(warnings, f.Source+": "+wmsg)
		}
	}
	if len(warnings) > 0 {
		md.H2("Warnings")
		md.PlainText("")
		md.BulletList(warnings...)
		md.PlainText("")
	}
	return md.Build()
}

// Summary writes the per-section overview, the store totals and the latest
// identification when there is one.
func Summary(w io.Writer, sum []model.SectionSummary, st model.Stats, id *model.IdentificationRecord) error {
	md := markdown.NewMarkdown(w)
	md.H1("Consolidated Metrics")
	md.PlainText("")

	if id != nil {
		md.Table(markdown.TableSet{
			Header: []string{"Year", "Unit", "Responsible", "Imported at"},
			Rows: [][]string{{
				year(id.Year), str(id.Unit), str(id.Responsible),
				id.ImportedAt.Format("2006-01-02 15:04:05"),
			}},
		})
		md.PlainText("")
	}

	rows := make([][]string, 0, len(sum))
	for _, s := range sum {
		rows = append(rows, []string{s.Section, strconv.Itoa(s.Metrics), num(s.MonthlySum), num(s.TotalSum), fmt.Sprintf("%.2f", s.AvgTotal)})
	}
	if len(rows) == 0 {
		md.PlainText("No consolidated data yet.")
		md.PlainText("")
	} else {
		md.Table(markdown.TableSet{
			Header: []string{"Section", "Metrics", "Monthly sum", "Total sum", "Avg total"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Records", "Sections", "Distinct metrics", "Monthly sum"},
		Rows:   [][]string{{strconv.Itoa(st.Records), strconv.Itoa(st.Sections), strconv.Itoa(st.Metrics), num(st.MonthlySum)}},
	})
	md.PlainText("")
	return md.Build()
}

// Validation writes the coverage verdict, the sections found and any titles
// that were accepted but produced nothing.
func Validation(w io.Writer, rep service.Report) error {
	md := markdown.NewMarkdown(w)
	md.H1("Validation: " + rep.Source)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Rows x Cols", fmt.Sprintf("%d x %d", rep.Profile.Rows, rep.Profile.Cols)},
			{"Non-empty cells", strconv.Itoa(rep.Profile.NonEmptyCells)},
			{"Numeric cells", strconv.Itoa(rep.Profile.NumericCells)},
			{"Records", strconv.Itoa(rep.Records)},
			{"Value sum", num(rep.ValueSum)},
			{"Coverage", fmt.Sprintf("%.2f", rep.Coverage)},
			{"Quality", rep.Quality},
		},
	})
	md.PlainText("")

	if len(rep.Sections) > 0 {
		md.H2("Sections")
		md.PlainText("")
		rows := make([][]string, 0, len(rep.Sections))
		for _, s := range rep.Sections {
			header := "positional"
			if len(s.Header) > 0 {
				header = strings.Join(s.Header, ", ")
			}
			rows = append(rows, []string{
				s.Title,
				fmt.Sprintf("%d-%d", s.FirstRow+1, s.LastRow+1),
				strconv.Itoa(s.Records),
				header,
			})
		}
		md.Table(markdown.TableSet{Header: []string{"Section", "Rows", "Records", "Header"}, Rows: rows})
		md.PlainText("")
	}

	if len(rep.Unmatched) > 0 {
		md.H2("Titles without records")
		md.PlainText("")
		md.BulletList(rep.Unmatched...)
		md.PlainText("")
	}
	if len(rep.Warnings) > 0 {
		md.H2("Warnings")
		md.PlainText("")
		md.BulletList(rep.Warnings...)
		md.PlainText("")
	}
	return md.Build()
}
