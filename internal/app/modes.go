package app

// ModeKind is the active modal state. Exactly one is active at a time and it
// decides which keys are legal.
type ModeKind int

const (
	ModeNormal ModeKind = iota
	ModeFilter
	ModeInspect
	ModeConfirm
	ModeConfig
	ModeConfigEditField
	ModeHelp
	ModeRecordings
)

func (k ModeKind) String() string {
	switch k {
	case ModeFilter:
		return "Filter"
	case ModeInspect:
		return "Inspect"
	case ModeConfirm:
		return "Confirm"
	case ModeConfig:
		return "Config"
	case ModeConfigEditField:
		return "ConfigEditField"
	case ModeHelp:
		return "Help"
	case ModeRecordings:
		return "Recordings"
	default:
		return "Normal"
	}
}

// ViewMode is the modal state plus the payload of the Inspect and Confirm variants.
type ViewMode struct {
	Kind    ModeKind
	Inspect InspectTarget
	Confirm ConfirmAction
}

func normalMode() ViewMode { return ViewMode{Kind: ModeNormal} }

func inspectMode(t InspectTarget) ViewMode {
	return ViewMode{Kind: ModeInspect, Inspect: t}
}

func confirmMode(c ConfirmAction) ViewMode {
	return ViewMode{Kind: ModeConfirm, Confirm: c}
}

// InspectKind names the entity shown by the inspect overlay.
type InspectKind int

const (
	InspectQuery InspectKind = iota
	InspectIndex
	InspectStatement
	InspectTable
	InspectReplication
	InspectBlocking
	InspectVacuum
	InspectWraparound
	InspectSetting
	InspectExtension
)

// InspectTarget identifies the inspected row by a stable id so it survives
// snapshot replacement. PID is used by queries, replication, blocking and
// vacuum; QueryID by statements; Name by the rest (schema.name keys,
// datname, setting and extension names).
type InspectTarget struct {
	Kind    InspectKind
	PID     int32
	QueryID int64
	Name    string
}

// ConfirmKind names the pending confirmation.
type ConfirmKind int

const (
	ConfirmCancel ConfirmKind = iota
	ConfirmKill
	ConfirmCancelChoice
	ConfirmKillChoice
	ConfirmCancelBatch
	ConfirmKillBatch
	ConfirmDeleteRecording
	ConfirmResetStatements
)

// ConfirmAction carries what is needed to execute or abort the confirmation.
// Choice variants keep the selected PID plus every PID matching the filter.
type ConfirmAction struct {
	Kind ConfirmKind
	PID  int32
	PIDs []int32
	Path string
}
