package domain

// Report is a backend-independent document: ordered sheets plus their
// presentation metadata.
type Report struct {
	Sheets []Sheet
}

// Sheet lists its header and rows in order. Styles, AutoFilter and Tables are
// declarative and keyed by A1-style ranges.
type Sheet struct {
	Name       string
	Header     []string
	Rows       [][]interface{}
	Styles     []RangeStyle
	AutoFilter string
	Tables     []TableRegion
}

type CellStyle struct {
	Bold         bool
	FillColor    string
	NumberFormat string
}

type RangeStyle struct {
	Range string
	Style CellStyle
}

type TableRegion struct {
	Name              string
	Range             string
	StyleName         string
	ShowRowStripes    bool
	ShowColumnStripes bool
}

// Sheet returns the sheet with the given name, or nil.
func (r *Report) Sheet(name string) *Sheet {
	for i := range r.Sheets {
		if r.Sheets[i].Name == name {
			return &r.Sheets[i]
		}
	}
	return nil
}
