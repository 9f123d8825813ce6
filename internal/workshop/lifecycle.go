package workshop

import "fmt"

var nextStatus = map[Status]Status{
	StatusNew:               StatusPickup,
	StatusPickup:            StatusToBeQuoted,
	StatusToBeQuoted:        StatusDocketReady,
	StatusQuoted:            StatusWaitingApprovalPO,
	StatusWaitingApprovalPO: StatusWaitingForParts,
	StatusWaitingForParts:   StatusBookedInForRepair,
	StatusBookedInForRepair: StatusRepaired,
	StatusRepaired:          StatusCompleted,
}

// Next returns the status a submit from the given status moves the job to.
// A docket branches on the quote-or-repair mode.
func Next(current Status, quoteOrRepair string) (Status, error) {
	switch current {
	case StatusDocketReady:
		if quoteOrRepair == ModeQuote {
			return StatusQuoted, nil
		}
		return StatusRepaired, nil
	case StatusCompleted:
		return "", ErrTerminalStatus
	}
	if to, ok := nextStatus[current]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, current)
}

// Known reports whether s is part of the job lifecycle.
func Known(s Status) bool {
	if s == StatusDocketReady || s == StatusCompleted {
		return true
	}
	_, ok := nextStatus[s]
	return ok
}
