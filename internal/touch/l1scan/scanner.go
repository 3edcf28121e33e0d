package l1scan

import (
	"errors"
	"time"
)

// ErrScanTimeout is returned by Scanner.NextScan when no scan arrives before
// the source's configured deadline. The caller is expected to retry. The
// pipeline's sensor worker retries at once and keeps no staleness state, so
// a sensor that keeps timing out is never marked stale.
var ErrScanTimeout = errors.New("l1scan: scan timeout")

// ErrScannerClosed is returned once a Scanner has been closed and can no
// longer produce scans.
var ErrScannerClosed = errors.New("l1scan: scanner closed")

// Scan is a single timestamped polar sweep. Timestamp is a monotonic,
// nanosecond-granularity clock reading (not wall-clock); Ranges is one
// sample per angular step, already converted to metres. A Ranges[i] value
// of RangeInvalid marks an out-of-range or dropped return.
type Scan struct {
	TimestampNanos int64
	Ranges         []float64
}

// RangeInvalid is the sentinel used for an invalid/out-of-range sample.
const RangeInvalid = 0.0

// Scanner yields a stream of angular range scans. Implementations must
// guarantee:
//   - TimestampNanos is non-decreasing across successive calls,
//   - len(Ranges) is constant for the lifetime of the Scanner,
//   - NextScan blocks (or times out) rather than busy-spinning.
type Scanner interface {
	// NextScan blocks until a scan is available, the deadline passed to the
	// constructor elapses (returning ErrScanTimeout), or the scanner is
	// closed (returning ErrScannerClosed).
	NextScan() (Scan, error)

	// StepCount returns N, the constant number of angular samples per scan.
	StepCount() int

	// AngularStepRadians returns Δ, the fixed angular spacing between
	// consecutive samples.
	AngularStepRadians() float64

	// Close releases the underlying resource. Subsequent NextScan calls
	// return ErrScannerClosed.
	Close() error
}

// Params describes the angular geometry of a scanner, shared by every
// concrete implementation so callers can build one without round-tripping
// through a live connection first.
type Params struct {
	StepCount          int
	AngularStepRadians float64
	Timeout            time.Duration
}
