package access

// Outcomes reported to a DecisionObserver.
const (
	OutcomeAllowed         = "allowed"
	OutcomeDenied          = "denied"
	OutcomeUnauthenticated = "unauthenticated"
)

// DecisionObserver receives gate decisions, typically for metrics.
type DecisionObserver interface {
	ObserveDecision(requirement, outcome string)
	ObserveAuditFailure(action string)
}

type nopObserver struct{}

func (nopObserver) ObserveDecision(string, string) {}
func (nopObserver) ObserveAuditFailure(string)     {}

// NopObserver discards all observations.
func NopObserver() DecisionObserver {
	return nopObserver{}
}
