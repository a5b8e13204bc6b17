package tracker

import "shipdraft/internal/domain"

// MissingBatchPolicy decides the terminal snapshot when a previously-active
// batch no longer appears in the active-batches query. The backend does not
// retain a terminal polling record, so the tracker cannot distinguish
// "finished successfully" from "failed and was garbage-collected"; the policy
// is isolated here so it can be replaced if the backend grows an explicit
// terminal status.
type MissingBatchPolicy func(last domain.BatchSnapshot) domain.BatchSnapshot

// AssumeComplete treats a disappeared batch as finished successfully. This
// trades a possible false-positive "complete" for never leaving a dangling
// progress indicator. The snapshot is flagged Inferred.
func AssumeComplete(last domain.BatchSnapshot) domain.BatchSnapshot {
	return domain.BatchSnapshot{
		BatchID:        last.BatchID,
		Step:           domain.BatchStepComplete,
		Completed:      last.Total,
		Total:          last.Total,
		ShipmentsFound: last.ShipmentsFound,
		Inferred:       true,
	}
}
