package activity

// Upload states of one staged file within a submission.
const (
	UploadPending    = "pending"
	UploadInProgress = "uploading"
	UploadDone       = "done"
	UploadFailed     = "failed"
)

// FileProgress is the coarse per-file status exposed to the presentation
// layer while a submission runs.
type FileProgress struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// ProgressFunc receives a status update each time a file changes state,
// in staging order.
type ProgressFunc func(FileProgress)

// SubmitResult reports the outcome of one submission: the created
// activity (set as soon as the record insert succeeded, even when a later
// step fails) and the final per-file statuses.
type SubmitResult struct {
	Activity Activity       `json:"activity"`
	Files    []FileProgress `json:"files"`
}
