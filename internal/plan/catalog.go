package plan

import "errors"

type Type string

const (
	TypeFree       Type = "free"
	TypeOneTime    Type = "one_time"
	TypeStarter    Type = "starter"
	TypePro        Type = "pro"
	TypeEnterprise Type = "enterprise"
)

// UnlimitedMeetings marks a plan without a monthly meetings cap.
const UnlimitedMeetings = -1

// DefaultSessionLimit caps generations for anonymous sessions without a plan.
const DefaultSessionLimit = 5

var ErrUnknownPlan = errors.New("unknown plan type")

// Limits is the static entitlement set for a plan.
type Limits struct {
	CanSave               bool `json:"can_save"`
	CanExport             bool `json:"can_export"`
	CanShare              bool `json:"can_share"`
	HasAutosave           bool `json:"has_autosave"`
	HasAudioTranscription bool `json:"has_audio_transcription"`
	HasPrioritySupport    bool `json:"has_priority_support"`
	HasCustomTemplates    bool `json:"has_custom_templates"`
	HasAPIAccess          bool `json:"has_api_access"`

	SessionGenerationLimit int `json:"session_generation_limit"`
	MeetingsLimit          int `json:"meetings_limit"`
}

var catalog = map[Type]Limits{
	TypeFree: {
		SessionGenerationLimit: DefaultSessionLimit,
		MeetingsLimit:          0,
	},
	TypeOneTime: {
		CanSave:                true,
		CanExport:              true,
		SessionGenerationLimit: DefaultSessionLimit,
		MeetingsLimit:          10,
	},
	TypeStarter: {
		CanSave:                true,
		CanExport:              true,
		CanShare:               true,
		HasAutosave:            true,
		SessionGenerationLimit: DefaultSessionLimit,
		MeetingsLimit:          30,
	},
	TypePro: {
		CanSave:                true,
		CanExport:              true,
		CanShare:               true,
		HasAutosave:            true,
		HasAudioTranscription:  true,
		HasCustomTemplates:     true,
		SessionGenerationLimit: DefaultSessionLimit,
		MeetingsLimit:          100,
	},
	TypeEnterprise: {
		CanSave:                true,
		CanExport:              true,
		CanShare:               true,
		HasAutosave:            true,
		HasAudioTranscription:  true,
		HasPrioritySupport:     true,
		HasCustomTemplates:     true,
		HasAPIAccess:           true,
		SessionGenerationLimit: DefaultSessionLimit,
		MeetingsLimit:          UnlimitedMeetings,
	},
}

// LimitsFor returns the entitlements of the given plan. Unknown plans fall
// back to free-tier limits so a bad value can never grant access.
func LimitsFor(t Type) Limits {
	if limits, ok := catalog[t]; ok {
		return limits
	}
	return catalog[TypeFree]
}

func Valid(t Type) bool {
	_, ok := catalog[t]
	return ok
}

func Types() []Type {
	return []Type{TypeFree, TypeOneTime, TypeStarter, TypePro, TypeEnterprise}
}
