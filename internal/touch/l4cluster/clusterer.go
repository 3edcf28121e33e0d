package l4cluster

import "github.com/lumentouch/touchcore/internal/touch/l3geometry"

// Clusterer abstracts the clustering algorithm, matching the teacher
// corpus's ClustererInterface so the pipeline can swap algorithms or inject
// a fake in tests without depending on the concrete DBSCAN implementation.
type Clusterer interface {
	Cluster(points []l3geometry.FgPoint, sensorID string, timestampNanos int64) []Candidate
	Params() Params
	SetParams(p Params)
}

// DBSCANClusterer implements Clusterer using grid-indexed DBSCAN.
type DBSCANClusterer struct {
	params Params
}

// NewDBSCANClusterer creates a DBSCANClusterer with explicit parameters.
func NewDBSCANClusterer(params Params) *DBSCANClusterer {
	return &DBSCANClusterer{params: params}
}

// NewDefaultDBSCANClusterer creates a DBSCANClusterer with DefaultParams.
func NewDefaultDBSCANClusterer() *DBSCANClusterer {
	return NewDBSCANClusterer(DefaultParams())
}

// Cluster delegates to the package-level Cluster function.
func (c *DBSCANClusterer) Cluster(points []l3geometry.FgPoint, sensorID string, timestampNanos int64) []Candidate {
	return Cluster(points, sensorID, timestampNanos, c.params)
}

// Params returns the current clustering parameters.
func (c *DBSCANClusterer) Params() Params { return c.params }

// SetParams updates the clustering parameters.
func (c *DBSCANClusterer) SetParams(p Params) { c.params = p }

var _ Clusterer = (*DBSCANClusterer)(nil)
