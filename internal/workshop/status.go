package workshop

import "strings"

// Action values selected on the job form.
const (
	ActionPickup            = "Pickup"
	ActionRepair            = "Repair"
	ActionDeliverToWorkshop = "Deliver to Workshop"
)

// Repair location values.
const (
	LocationSite     = "Site"
	LocationWorkshop = "Workshop"
)

// Quote-or-repair mode values.
const (
	ModeQuote    = "Quote"
	ModeRepaired = "Repaired"
)

// StatusContext is the form state the evaluator decides on. Empty strings
// stand for values that are not set yet.
type StatusContext struct {
	ExistingWorkshopID string `json:"existing_workshop_id"`
	WorkshopStatus     Status `json:"workshop_status"`
	ExistingOrderID    string `json:"existing_order_id"`
	LocationOfRepair   string `json:"location_of_repair" validate:"omitempty,oneof=Site Workshop"`
	SiteLocation       string `json:"site_location"`
	QuoteOrRepair      string `json:"quote_or_repair" validate:"omitempty,oneof=Quote Repaired"`
	Action             string `json:"action"`
}

// StatusResult drives which form sections are editable and how the submit
// button is labelled. Priority records which branch fired and is for
// debugging only.
type StatusResult struct {
	CanEditMachineInfo bool    `json:"can_edit_machine_info"`
	CanEditUserInfo    bool    `json:"can_edit_user_info"`
	CanEditContacts    bool    `json:"can_edit_contacts"`
	CanCreateOrder     bool    `json:"can_create_order"`
	CanPickup          bool    `json:"can_pickup"`
	ButtonText         string  `json:"button_text"`
	StatusDisplay      string  `json:"status_display"`
	Priority           float64 `json:"priority"`
}

// Evaluate maps a job context to its status result. Guards are checked in
// order and the first match wins.
func Evaluate(c StatusContext) StatusResult {
	hasWorkshop := c.ExistingWorkshopID != ""
	hasOrder := c.ExistingOrderID != ""

	switch {
	case hasWorkshop && c.WorkshopStatus == StatusPickup:
		return locked(deliveredButton(c.Action), "Pickup", 1)

	case c.WorkshopStatus == StatusNew:
		return StatusResult{
			CanEditMachineInfo: true,
			CanEditUserInfo:    true,
			CanEditContacts:    true,
			CanPickup:          c.Action == ActionPickup,
			ButtonText:         scheduleButton(c.Action),
			StatusDisplay:      "New",
			Priority:           2,
		}

	case !hasWorkshop:
		return StatusResult{
			CanEditMachineInfo: true,
			CanEditUserInfo:    true,
			CanEditContacts:    true,
			CanPickup:          c.Action == ActionPickup,
			ButtonText:         scheduleButton(c.Action),
			StatusDisplay:      "New",
			Priority:           3,
		}
	}

	switch c.WorkshopStatus {
	case StatusToBeQuoted:
		res := editable("Docket Ready", "To Be Quoted", 4)
		res.CanCreateOrder = !hasOrder
		return res
	case StatusDocketReady:
		button := ModeRepaired
		if c.QuoteOrRepair == ModeQuote {
			button = "Quoted"
		}
		return editable(button, "Docket Ready", 4.1)
	case StatusQuoted, StatusRepaired:
		if c.WorkshopStatus == StatusQuoted {
			return locked("Waiting Approval PO", "Quoted", 4.5)
		}
		return locked("Update Job", "Repaired", 4.5)
	case StatusWaitingApprovalPO:
		return editable("Waiting For Parts", "Waiting Approval PO", 4.6)
	case StatusWaitingForParts:
		return locked("Booked In For Repair", "Waiting For Parts", 4.65)
	case StatusBookedInForRepair:
		return locked("Repaired", "Booked In For Repair Service", 4.7)
	}

	// Shadowed by the quoted/repaired arm above; never reached.
	if c.WorkshopStatus == StatusRepaired {
		return locked("Proceed", "Repaired", 4.8)
	}
	if c.WorkshopStatus == StatusCompleted {
		return locked("Job Completed", "Completed", 4.9)
	}

	if c.WorkshopStatus == "" {
		return locked("Loading...", "Loading...", 5)
	}
	return locked("Update Job", strings.ReplaceAll(string(c.WorkshopStatus), "_", " "), 5)
}

func locked(button, display string, priority float64) StatusResult {
	return StatusResult{
		ButtonText:    button,
		StatusDisplay: display,
		Priority:      priority,
	}
}

func editable(button, display string, priority float64) StatusResult {
	return StatusResult{
		CanEditMachineInfo: true,
		CanEditUserInfo:    true,
		CanEditContacts:    true,
		ButtonText:         button,
		StatusDisplay:      display,
		Priority:           priority,
	}
}

func deliveredButton(action string) string {
	switch action {
	case ActionPickup:
		return "Pickup Delivered"
	case ActionRepair:
		return "Repair Delivered"
	default:
		return "Delivered to Workshop"
	}
}

func scheduleButton(action string) string {
	switch action {
	case ActionPickup:
		return "Schedule Pickup"
	case ActionRepair:
		return "Schedule Repair"
	default:
		return "Schedule Delivery"
	}
}
