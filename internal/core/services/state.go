package services

// PipelineState is the lifecycle state of a user's pipeline.
type PipelineState int

const (
	// StateNoPipeline means the user has never completed an upload.
	StateNoPipeline PipelineState = iota

	// StateBuilding means an upload is being indexed. A previous pipeline,
	// if any, keeps serving questions until the new one is registered.
	StateBuilding

	// StateReady means the user's pipeline answers questions.
	StateReady
)

// String returns the state name.
func (s PipelineState) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	default:
		return "no_pipeline"
	}
}
