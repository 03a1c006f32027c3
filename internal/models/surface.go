package models

// InsertionPoint names a slot of the rendering surface
type InsertionPoint string

const (
	PointPartitions InsertionPoint = "partitions-info"
	PointPieChart   InsertionPoint = "pieChart"
	PointBarChart   InsertionPoint = "barChart"
	PointTable      InsertionPoint = "partitions-table"
	PointTotalUsed  InsertionPoint = "total-used"
	PointTotalFree  InsertionPoint = "total-free"
)
