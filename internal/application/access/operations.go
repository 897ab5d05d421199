package access

// Role-scoped operations. Grants live in the policy catalog.
const (
	OpProjectSubmit  = "project.submit"
	OpProjectAssign  = "project.assign"
	OpProjectReject  = "project.reject"
	OpDisputeResolve = "dispute.resolve"
	OpPaymentRelease = "payment.release"
	OpPaymentRefund  = "payment.refund"
	OpAuditRead      = "audit.read"
	OpIdentityList   = "identity.list"
	OpDashboardView  = "dashboard.view"
)
