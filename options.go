package terasort

// PlacementVariant selects how sorted runs are written to durable storage
// (spec §4.6).
type PlacementVariant int

const (
	// SharedFile pre-sizes one output file and has every peer mmap-write
	// its run at a disjoint, pre-computed byte offset.
	SharedFile PlacementVariant = iota
	// PerPeerFile has every peer write its own "<prefix>-part-NNNNN" file.
	PerPeerFile
	// Sequential circulates a token 0->1->...->T-1 and appends to one
	// shared file only while holding it. Kept for comparison with the
	// other two variants; not recommended for real runs.
	Sequential
)

// ShuffleVariant selects the all-to-all transport strategy (spec §4.4).
type ShuffleVariant int

const (
	// Batch ships one shipment per (sender, target) pair after classify
	// completes.
	Batch ShuffleVariant = iota
	// Streamed overlaps classification with transmission, flushing
	// sub-buckets once they reach ConcurSendBucketSize.
	Streamed
)

const (
	// defaultMemoryMapElementCount is the default mmap window size, in
	// records, for the windowed record reader.
	defaultMemoryMapElementCount = 1_000_000
	// defaultConcurSendBucketSize is the default streamed-shuffle flush
	// threshold, in records.
	defaultConcurSendBucketSize = 100_000
	// defaultMaxInFlightSends bounds outstanding asynchronous sends per
	// target peer in the streamed shuffle (spec §5 back-pressure).
	defaultMaxInFlightSends = 8
)

// Option configures a Group.
type Option func(*config)

type config struct {
	sampleSize            int
	memoryMapElementCount int64
	concurSendBucketSize  int
	maxInFlightSends      int64
	placement             PlacementVariant
	shuffle               ShuffleVariant
	hdfsConf              []string
	outputPrefix          string
}

func defaultConfig() *config {
	return &config{
		memoryMapElementCount: defaultMemoryMapElementCount,
		concurSendBucketSize:  defaultConcurSendBucketSize,
		maxInFlightSends:      defaultMaxInFlightSends,
		placement:             SharedFile,
		shuffle:               Batch,
	}
}

// WithSampleSize sets the total number of sample keys drawn across all
// peers to seed pivot selection (spec §4.2). Required; there is no sane
// default since it must scale with the input.
func WithSampleSize(n int) Option {
	return func(c *config) { c.sampleSize = n }
}

// WithMemoryMapElementCount sets the number of records per mmap window
// used by the windowed record reader (spec §6 tunable
// memoryMap.elementCount).
func WithMemoryMapElementCount(n int64) Option {
	return func(c *config) { c.memoryMapElementCount = n }
}

// WithConcurSendBucketSize sets the streamed-shuffle flush threshold, in
// records (spec §6 tunable concurSendBucketSize).
func WithConcurSendBucketSize(n int) Option {
	return func(c *config) { c.concurSendBucketSize = n }
}

// WithMaxInFlightSends bounds the number of outstanding asynchronous
// sends per target peer during the streamed shuffle (spec §5
// back-pressure).
func WithMaxInFlightSends(n int64) Option {
	return func(c *config) { c.maxInFlightSends = n }
}

// WithPlacement selects the output placement strategy (spec §4.6).
func WithPlacement(v PlacementVariant) Option {
	return func(c *config) { c.placement = v }
}

// WithShuffle selects the all-to-all transport strategy (spec §4.4).
func WithShuffle(v ShuffleVariant) Option {
	return func(c *config) { c.shuffle = v }
}

// WithHDFSConf records a path-separator-delimited list of remote-filesystem
// configuration files, consulted only when Group.Run's input path is a
// directory and the remote-FS adapter activates (spec §6 tunable
// hdfsConf). The in-tree adapter treats the directory as local and does
// not itself parse these files' contents, but it does require each one
// to exist before opening the directory, the same way a real
// HDFS-backed adapter would fail fast on a missing configuration file
// rather than silently ignoring it.
func WithHDFSConf(paths ...string) Option {
	return func(c *config) { c.hdfsConf = append([]string(nil), paths...) }
}

// WithOutputPrefix sets the filename prefix used by the PerPeerFile and
// Sequential placement variants' stale-file cleanup (spec §4.6).
func WithOutputPrefix(prefix string) Option {
	return func(c *config) { c.outputPrefix = prefix }
}
