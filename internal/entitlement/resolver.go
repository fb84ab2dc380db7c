package entitlement

import (
	"context"
	"errors"

	"easyminutes/internal/metrics"
	"easyminutes/internal/plan"
	"easyminutes/internal/subscription"
)

type Capability string

const (
	CapabilitySave               Capability = "save"
	CapabilityExport             Capability = "export"
	CapabilityShare              Capability = "share"
	CapabilityAutosave           Capability = "autosave"
	CapabilityAudioTranscription Capability = "audio_transcription"
	CapabilityCustomTemplates    Capability = "custom_templates"
	CapabilityAPIAccess          Capability = "api_access"

	// CapabilityGenerate is the only metered capability: each grant is
	// expected to consume one meeting from the quota.
	CapabilityGenerate Capability = "generate"
)

type Reason string

const (
	ReasonNoSubscription   Reason = "NO_SUBSCRIPTION"
	ReasonQuotaExceeded    Reason = "QUOTA_EXCEEDED"
	ReasonPlanLacksFeature Reason = "PLAN_LACKS_FEATURE"
)

// Decision is a value, never an error: denials are normal outcomes that the
// caller turns into an upgrade prompt.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason) Decision {
	metrics.RecordEntitlementDenial(string(reason))
	return Decision{Allowed: false, Reason: reason}
}

// Resolve answers whether the given subscription grants a capability. A nil
// subscription or one that is not active/trialing only carries free-tier
// defaults, which grant nothing beyond the session gate.
func Resolve(sub *subscription.Subscription, capability Capability) Decision {
	if sub == nil || !sub.Active() {
		return deny(ReasonNoSubscription)
	}

	limits := plan.LimitsFor(sub.PlanType)

	switch capability {
	case CapabilitySave:
		if !limits.CanSave {
			return deny(ReasonPlanLacksFeature)
		}
	case CapabilityExport:
		if !limits.CanExport {
			return deny(ReasonPlanLacksFeature)
		}
	case CapabilityShare:
		if !limits.CanShare {
			return deny(ReasonPlanLacksFeature)
		}
	case CapabilityAutosave:
		if !limits.HasAutosave {
			return deny(ReasonPlanLacksFeature)
		}
	case CapabilityAudioTranscription:
		if !limits.HasAudioTranscription {
			return deny(ReasonPlanLacksFeature)
		}
	case CapabilityCustomTemplates:
		if !limits.HasCustomTemplates {
			return deny(ReasonPlanLacksFeature)
		}
	case CapabilityAPIAccess:
		if !limits.HasAPIAccess {
			return deny(ReasonPlanLacksFeature)
		}
	case CapabilityGenerate:
		if sub.MeetingsLimit != plan.UnlimitedMeetings && sub.MeetingsUsed >= sub.MeetingsLimit {
			return deny(ReasonQuotaExceeded)
		}
	default:
		return deny(ReasonPlanLacksFeature)
	}

	return allow()
}

// Resolver reads the subscription store and applies Resolve. Store failures
// are the only errors it returns; denials come back as decisions.
type Resolver struct {
	subs subscription.Repository
}

func NewResolver(subs subscription.Repository) *Resolver {
	return &Resolver{subs: subs}
}

func (r *Resolver) Check(ctx context.Context, userID int, capability Capability) (Decision, error) {
	sub, err := r.subs.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			return Resolve(nil, capability), nil
		}
		return Decision{}, err
	}
	return Resolve(sub, capability), nil
}
