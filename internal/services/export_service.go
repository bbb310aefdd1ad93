package services

import "time"

const (
	ExportFormatJSON = "json"
	ExportFormatLong = "long"
	ExportFormatWide = "wide"
)

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders downloads of the whole collection. It never mutates
// the store.
type ExportService struct {
	catalog *Catalog
	store   *ResponseStore
	now     func() time.Time
}

func NewExportService(catalog *Catalog, store *ResponseStore) *ExportService {
	return &ExportService{catalog: catalog, store: store, now: time.Now}
}

// Export renders the current snapshot. An empty format means JSON.
func (s *ExportService) Export(format string) (*ExportResult, error) {
	if format == "" {
		format = ExportFormatJSON
	}
	rs := s.store.All()
	base := "clima_organizacional_" + s.now().UTC().Format("2006-01-02")

	switch format {
	case ExportFormatJSON:
		b, err := MarshalSnapshot(rs)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: base + ".json", ContentType: "application/json", Data: b}, nil
	case ExportFormatLong:
		b, err := ExportLongCSV(buildLongRows(s.catalog, rs))
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: base + "_long.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	case ExportFormatWide:
		b, err := ExportWideCSV(s.catalog.questions, rs)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: base + "_wide.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	default:
		return nil, NewInvalidError("unsupported format")
	}
}
