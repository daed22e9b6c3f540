package documents

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-crm/internal/platform/httpx"
)

var (
	ErrInvalidStatus = fmt.Errorf("%w: invalid status transition", httpx.ErrConflict)
	ErrNotEditable   = fmt.Errorf("%w: only DRAFT documents can be edited", httpx.ErrConflict)
	ErrUnknownAction = fmt.Errorf("%w: unknown action", httpx.ErrNotFound)
)

// Action names a status change requested through the API.
type Action string

const (
	ActionIssue   Action = "issue"
	ActionPay     Action = "pay"
	ActionVoid    Action = "void"
	ActionSend    Action = "send"
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

type transition struct {
	from []Status
	to   Status
}

var workflows = map[Kind]map[Action]transition{
	KindInvoice: {
		ActionIssue: {from: []Status{StatusDraft}, to: StatusIssued},
		ActionPay:   {from: []Status{StatusIssued}, to: StatusPaid},
		ActionVoid:  {from: []Status{StatusDraft, StatusIssued}, to: StatusVoid},
	},
	KindProposal: {
		ActionSend:    {from: []Status{StatusDraft}, to: StatusSent},
		ActionAccept:  {from: []Status{StatusSent}, to: StatusAccepted},
		ActionDecline: {from: []Status{StatusSent}, to: StatusDeclined},
	},
}

// NextStatus returns the status reached by applying action to a document of
// kind in status current.
func NextStatus(kind Kind, current Status, action Action) (Status, error) {
	t, ok := workflows[kind][action]
	if !ok {
		return "", fmt.Errorf("%w: %s %s", ErrUnknownAction, kind, action)
	}
	for _, s := range t.from {
		if s == current {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s a %s %s", ErrInvalidStatus, action, current, kind)
}
