package model

// RemovalPolicy selects how a rule referencing a thing being removed should
// be handled: the whole rule dropped, or just its reference to that thing.
type RemovalPolicy string

const (
	PolicyCascade RemovalPolicy = "cascade"
	PolicyUpdate  RemovalPolicy = "update"
)
