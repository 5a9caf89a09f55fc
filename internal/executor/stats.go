package executor

import "github.com/specialistvlad/arcaneflow/internal/pipeline"

// Stats summarizes a finished run.
type Stats struct {
	SourceRecords      int64 `json:"source_records"`
	TransformedRecords int64 `json:"transformed_records"`
	InsertedRecords    int64 `json:"inserted_records"`
}

// StatsFrom reads the record counts the executor and sinks left in ec's
// metadata. Missing counts are zero.
func StatsFrom(ec *pipeline.ExecutionContext) Stats {
	var s Stats
	if ec == nil {
		return s
	}
	s.SourceRecords, _ = ec.Metadata.Int(pipeline.MetaSourceRecords)
	s.TransformedRecords, _ = ec.Metadata.Int(pipeline.MetaTransformedRecords)
	s.InsertedRecords, _ = ec.Metadata.Int(pipeline.MetaProcessedRows)
	return s
}

// LogAttrs returns the stats as slog key/value pairs.
func (s Stats) LogAttrs() []any {
	return []any{
		"source_records", s.SourceRecords,
		"transformed_records", s.TransformedRecords,
		"inserted_records", s.InsertedRecords,
	}
}
