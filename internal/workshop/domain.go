package workshop

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a workshop job.
type Status string

const (
	StatusNew               Status = "new"
	StatusPickup            Status = "pickup"
	StatusToBeQuoted        Status = "to_be_quoted"
	StatusDocketReady       Status = "docket_ready"
	StatusQuoted            Status = "quoted"
	StatusRepaired          Status = "repaired"
	StatusWaitingApprovalPO Status = "waiting_approval_po"
	StatusWaitingForParts   Status = "waiting_for_parts"
	StatusBookedInForRepair Status = "booked_in_for_repair_service"
	StatusCompleted         Status = "completed"
)

// Job is a repair or service record. CustomerGroupID selects the price list
// used when pricing the attached order.
type Job struct {
	ID               uuid.UUID `json:"id"`
	CustomerName     string    `json:"customer_name"`
	ContactName      string    `json:"contact_name"`
	ContactEmail     string    `json:"contact_email"`
	ContactPhone     string    `json:"contact_phone"`
	MachineMake      string    `json:"machine_make"`
	MachineModel     string    `json:"machine_model"`
	SerialNumber     string    `json:"serial_number"`
	FaultDescription string    `json:"fault_description"`
	LocationOfRepair string    `json:"location_of_repair"`
	SiteLocation     string    `json:"site_location"`
	QuoteOrRepair    string    `json:"quote_or_repair"`
	Action           string    `json:"action"`
	CustomerGroupID  int       `json:"customer_group_id"`
	Status           Status    `json:"status"`
	OrderID          *string   `json:"order_id,omitempty"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StatusContext builds the evaluator input for a stored job.
func (j Job) StatusContext() StatusContext {
	ctx := StatusContext{
		ExistingWorkshopID: j.ID.String(),
		WorkshopStatus:     j.Status,
		LocationOfRepair:   j.LocationOfRepair,
		SiteLocation:       j.SiteLocation,
		QuoteOrRepair:      j.QuoteOrRepair,
		Action:             j.Action,
	}
	if j.ID == uuid.Nil {
		ctx.ExistingWorkshopID = ""
	}
	if j.OrderID != nil {
		ctx.ExistingOrderID = *j.OrderID
	}
	return ctx
}

// StatusEvent records one lifecycle transition.
type StatusEvent struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

// JobWithStatus bundles a job with its evaluated permissions.
type JobWithStatus struct {
	Job
	Evaluation StatusResult  `json:"evaluation"`
	History    []StatusEvent `json:"history,omitempty"`
}

type CreateJobRequest struct {
	CustomerName     string `json:"customer_name" validate:"required,max=200"`
	ContactName      string `json:"contact_name" validate:"max=200"`
	ContactEmail     string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone     string `json:"contact_phone" validate:"max=50"`
	MachineMake      string `json:"machine_make" validate:"max=100"`
	MachineModel     string `json:"machine_model" validate:"max=100"`
	SerialNumber     string `json:"serial_number" validate:"max=100"`
	FaultDescription string `json:"fault_description"`
	LocationOfRepair string `json:"location_of_repair" validate:"required,oneof=Site Workshop"`
	SiteLocation     string `json:"site_location" validate:"max=200"`
	QuoteOrRepair    string `json:"quote_or_repair" validate:"required,oneof=Quote Repaired"`
	Action           string `json:"action" validate:"omitempty,oneof=Pickup Repair 'Deliver to Workshop'"`
	CustomerGroupID  int    `json:"customer_group_id" validate:"min=0"`
}

// UpdateJobRequest carries optional edits grouped by form section.
type UpdateJobRequest struct {
	// machine info
	MachineMake      *string `json:"machine_make,omitempty" validate:"omitempty,max=100"`
	MachineModel     *string `json:"machine_model,omitempty" validate:"omitempty,max=100"`
	SerialNumber     *string `json:"serial_number,omitempty" validate:"omitempty,max=100"`
	FaultDescription *string `json:"fault_description,omitempty"`
	// user info
	CustomerName     *string `json:"customer_name,omitempty" validate:"omitempty,max=200"`
	LocationOfRepair *string `json:"location_of_repair,omitempty" validate:"omitempty,oneof=Site Workshop"`
	SiteLocation     *string `json:"site_location,omitempty" validate:"omitempty,max=200"`
	QuoteOrRepair    *string `json:"quote_or_repair,omitempty" validate:"omitempty,oneof=Quote Repaired"`
	Action           *string `json:"action,omitempty" validate:"omitempty,oneof=Pickup Repair 'Deliver to Workshop'"`
	// contacts
	ContactName  *string `json:"contact_name,omitempty" validate:"omitempty,max=200"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty" validate:"omitempty,max=50"`
}

func (r UpdateJobRequest) touchesMachine() bool {
	return r.MachineMake != nil || r.MachineModel != nil || r.SerialNumber != nil || r.FaultDescription != nil
}

func (r UpdateJobRequest) touchesUser() bool {
	return r.CustomerName != nil || r.LocationOfRepair != nil || r.SiteLocation != nil || r.QuoteOrRepair != nil || r.Action != nil
}

func (r UpdateJobRequest) touchesContacts() bool {
	return r.ContactName != nil || r.ContactEmail != nil || r.ContactPhone != nil
}

type AttachOrderRequest struct {
	OrderID string `json:"order_id" validate:"required,max=64"`
}

type ListJobsRequest struct {
	Status *Status `json:"status,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=500"`
	Offset int     `json:"offset" validate:"gte=0"`
}
