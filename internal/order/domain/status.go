package domain

import "errors"

// Status values keep the storefront's Portuguese labels because they are
// the persisted wire values, not just display strings.
type Status string

const (
	StatusPending         Status = "Pendente"
	StatusApproved        Status = "Aprovado"
	StatusPicking         Status = "Em separação"
	StatusShipped         Status = "A caminho"
	StatusDelivered       Status = "Entregue"
	StatusCancelled       Status = "Cancelado"
	StatusRefundRequested Status = "Reembolso solicitado"
)

var ErrIllegalTransition = errors.New("illegal order status transition")

// transitions is the single definition of the order lifecycle. Fulfillment
// moves forward only; Cancelado is reachable from any non-terminal state;
// Reembolso solicitado exactly from the refund-eligible states.
var transitions = map[Status][]Status{
	StatusPending:         {StatusApproved, StatusCancelled},
	StatusApproved:        {StatusPicking, StatusShipped, StatusDelivered, StatusCancelled, StatusRefundRequested},
	StatusPicking:         {StatusShipped, StatusDelivered, StatusCancelled, StatusRefundRequested},
	StatusShipped:         {StatusDelivered, StatusCancelled, StatusRefundRequested},
	StatusDelivered:       {StatusRefundRequested},
	StatusCancelled:       {},
	StatusRefundRequested: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	targets, ok := transitions[s]
	return ok && len(targets) == 0
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanRequestRefund is derived purely from the current status; there are no
// hidden eligibility flags.
func CanRequestRefund(s Status) bool {
	return CanTransition(s, StatusRefundRequested)
}
