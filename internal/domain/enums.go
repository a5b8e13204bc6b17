package domain

// DraftStatus is the review lifecycle of a draft.
type DraftStatus string

const (
	DraftStatusPendingReview DraftStatus = "pending_review"
	DraftStatusApproved      DraftStatus = "approved"
	DraftStatusRejected      DraftStatus = "rejected"
	DraftStatusArchived      DraftStatus = "archived"
)

// ValidDraftStatuses enumerates the statuses accepted by transition endpoints.
var ValidDraftStatuses = map[DraftStatus]bool{
	DraftStatusPendingReview: true,
	DraftStatusApproved:      true,
	DraftStatusRejected:      true,
	DraftStatusArchived:      true,
}

// AddressingMode selects how receiver addresses relate across boxes.
type AddressingMode string

const (
	// AddressingShared means every box carries the same receiver address.
	AddressingShared AddressingMode = "shared"
	// AddressingMulti means boxes may carry distinct receiver addresses.
	AddressingMulti AddressingMode = "multi"
)

// ClearanceType is the destination customs clearance arrangement.
type ClearanceType string

const (
	ClearanceDDP ClearanceType = "ddp"
	ClearanceDDU ClearanceType = "ddu"
	ClearanceDAP ClearanceType = "dap"
)

// ValidClearanceTypes is the fixed set accepted by the downstream platform.
var ValidClearanceTypes = map[ClearanceType]bool{
	ClearanceDDP: true,
	ClearanceDDU: true,
	ClearanceDAP: true,
}

// BatchStep is one stage of the background extraction pipeline.
type BatchStep string

const (
	BatchStepClassifying    BatchStep = "classifying"
	BatchStepExtracting     BatchStep = "extracting"
	BatchStepGrouping       BatchStep = "grouping"
	BatchStepBuildingDrafts BatchStep = "building_drafts"
	BatchStepEnriching      BatchStep = "enriching"
	BatchStepComplete       BatchStep = "complete"
	BatchStepError          BatchStep = "error"
)

// batchStepOrder fixes the monotonic ordering of pipeline steps. Terminal
// steps sort after every working step so a terminal snapshot is never dropped
// as a regression.
var batchStepOrder = map[BatchStep]int{
	BatchStepClassifying:    0,
	BatchStepExtracting:     1,
	BatchStepGrouping:       2,
	BatchStepBuildingDrafts: 3,
	BatchStepEnriching:      4,
	BatchStepComplete:       5,
	BatchStepError:          5,
}

// StepIndex returns the position of a step in the fixed pipeline ordering,
// or -1 for an unknown step.
func StepIndex(step BatchStep) int {
	if idx, ok := batchStepOrder[step]; ok {
		return idx
	}
	return -1
}
