package models

type ReconcileOutcome string

func (o ReconcileOutcome) String() string {
	return string(o)
}

const (
	OutcomeConfirmedPaid      ReconcileOutcome = "ConfirmedPaid"
	OutcomeConfirmedOther     ReconcileOutcome = "ConfirmedOtherState"
	OutcomeGatewayRejected    ReconcileOutcome = "GatewayRejected"
	OutcomeValidationMismatch ReconcileOutcome = "ValidationMismatch"
	OutcomeNotFound           ReconcileOutcome = "NotFound"
	OutcomeMalformedInput     ReconcileOutcome = "MalformedInput"
	OutcomeStoreUnavailable   ReconcileOutcome = "StoreUnavailable"
)

// ReconcileResult is what a single reconciliation attempt produced. The transport
// adapters map it to a redirect target or an HTTP status, the reason goes into logs.
type ReconcileResult struct {
	Outcome       ReconcileOutcome `json:"outcome"`
	OrderID       string           `json:"order_id,omitempty"`
	State         string           `json:"state,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Reason        string           `json:"reason,omitempty"`
}
