package schema

// Custom string types for type safety.
type (
	// Frequency represents the sampling frequency of a time-series.
	Frequency string

	// Reducer represents the aggregation used when resampling a series.
	Reducer string

	// MetricKind represents the queue metric being computed.
	MetricKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for storage.
	DatabaseBackend string
)

// All frequencies supported.
const (
	DayFreq     Frequency = "d" // default
	WeekFreq    Frequency = "w"
	MonthFreq   Frequency = "m"
	QuarterFreq Frequency = "q"
	YearFreq    Frequency = "a"
)

// All resampling reducers supported.
const (
	FirstReducer Reducer = "first"
	SumReducer   Reducer = "sum"
	MeanReducer  Reducer = "mean"
	CountReducer Reducer = "count"
)

// All metric kinds supported.
const (
	BacklogMetric     MetricKind = "backlog"
	ThroughputMetric  MetricKind = "throughput"
	ArrivalsMetric    MetricKind = "arrivals"
	WaitMetric        MetricKind = "wait"
	ReconstructMetric MetricKind = "reconstruct"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidFrequencies lists all valid canonical frequency codes. "y" is accepted
// as an alias for "a" by ParseFrequency.
var ValidFrequencies = map[Frequency]struct{}{
	DayFreq:     {},
	WeekFreq:    {},
	MonthFreq:   {},
	QuarterFreq: {},
	YearFreq:    {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllMetricKinds returns a list of all supported metric kinds.
var AllMetricKinds = []MetricKind{
	BacklogMetric, ThroughputMetric, ArrivalsMetric, WaitMetric, ReconstructMetric,
}
