package model

import "time"

// Months holds one value per calendar month, January first.
type Months [12]float64

func (m Months) Sum() float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}

// Add accumulates o into m pairwise.
func (m *Months) Add(o Months) {
	for i := range m {
		m[i] += o[i]
	}
}

// MetricRecord is one monthly series for a (section, metric, year).
type MetricRecord struct {
	Section string  `json:"section"`           // normalized section key
	Metric  string  `json:"metric"`            // row label as written in the sheet
	Year    *int    `json:"year"`              // nil when neither a year column nor identification supplied one
	Months  Months  `json:"months"`
	Total   float64 `json:"total_annual"`
}

// Key is the consolidation identity. Unknown years are stored as 0.
type Key struct {
	Section string
	Metric  string
	Year    int
}

func (r MetricRecord) Key() Key {
	k := Key{Section: r.Section, Metric: r.Metric}
	if r.Year != nil {
		k.Year = *r.Year
	}
	return k
}

// FinalizeTotal keeps a supplied non-zero total, otherwise sums the months.
func (r *MetricRecord) FinalizeTotal() {
	if r.Total == 0 {
		r.Total = r.Months.Sum()
	}
}

// Merge adds the incoming series onto r.
func (r *MetricRecord) Merge(in MetricRecord) {
	r.Months.Add(in.Months)
	r.Total += in.Total
}

// Outcome of a single upsert.
type Outcome int

const (
	Inserted Outcome = iota + 1
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

type Counts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

func (c *Counts) Add(o Outcome) {
	switch o {
	case Inserted:
		c.Inserted++
	case Updated:
		c.Updated++
	}
}

// IdentificationRecord is the labeled block at the top of a sheet.
type IdentificationRecord struct {
	ID          int64     `json:"id,omitempty"`
	Year        *int      `json:"year"`
	Unit        *string   `json:"unit"`
	Responsible *string   `json:"responsible"`
	ImportedAt  time.Time `json:"imported_at"`
}

func (i IdentificationRecord) Empty() bool {
	return i.Year == nil && i.Unit == nil && i.Responsible == nil
}

// ImportLogEntry is the append-only audit row written once per processed file.
type ImportLogEntry struct {
	ID          int64     `json:"id,omitempty"`
	BatchID     string    `json:"batch_id"`
	Source      string    `json:"source"`
	RecordCount int       `json:"record_count"`
	ImportedAt  time.Time `json:"imported_at"`
}

// Batch is everything one file contributes to the store. It is committed atomically.
type Batch struct {
	ID             string
	Source         string
	Identification *IdentificationRecord
	Records        []MetricRecord
}

// SectionSummary feeds the dashboard overview.
type SectionSummary struct {
	Section    string  `json:"section"`
	Metrics    int     `json:"metrics"`
	MonthlySum float64 `json:"monthly_sum"`
	TotalSum   float64 `json:"total_sum"`
	AvgTotal   float64 `json:"avg_total"`
}

type Stats struct {
	Records    int     `json:"records"`
	Sections   int     `json:"sections"`
	Metrics    int     `json:"distinct_metrics"`
	MonthlySum float64 `json:"monthly_sum"`
}

// MetricFilter narrows the detail read path; zero values match everything.
type MetricFilter struct {
	Section string
	Year    *int
}

// IntPtr and StrPtr are small helpers for optional fields.
func IntPtr(v int) *int { return &v }

func StrPtr(s string) *string { return &s }
