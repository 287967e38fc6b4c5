package api

// Logical endpoint names, one per (domain, operation) pair. The full
// request URL is the configured base address joined with one of these.
const (
	// Auth domain.
	EndpointLogin         = "Auth/login"
	EndpointCreateAccount = "Auth/createAccount"

	// EventDirectory domain.
	EndpointGetUserEvents   = "EventDirectory/getUserEvents"
	EndpointGetEvent        = "EventDirectory/getEvent"
	EndpointCreateEvent     = "EventDirectory/createEvent"
	EndpointGetEventMembers = "EventDirectory/getEventMembers"
	EndpointInvite          = "EventDirectory/invite"
	EndpointRemoveMember    = "EventDirectory/removeMember"
	EndpointSetActive       = "EventDirectory/setActive"
	EndpointDeleteEvent     = "EventDirectory/deleteEvent"

	// DutyRoster domain.
	EndpointGetEventDuties = "DutyRoster/getEventDuties"
	EndpointAddDuty        = "DutyRoster/addDuty"
	EndpointAssignDuty     = "DutyRoster/assignDuty"
	EndpointUnassignDuty   = "DutyRoster/unassignDuty"
	EndpointUpdateDuty     = "DutyRoster/updateDuty"
	EndpointMarkDone       = "DutyRoster/markDone"
	EndpointReOpen         = "DutyRoster/reOpen"
	EndpointDeleteDuty     = "DutyRoster/deleteDuty"

	// RotationGroups domain.
	EndpointListTemplates  = "RotationGroups/listTemplates"
	EndpointCreateTemplate = "RotationGroups/createTemplate"
	EndpointUpdateTemplate = "RotationGroups/updateTemplate"
	EndpointDeleteTemplate = "RotationGroups/deleteTemplate"
	EndpointApplyTemplate  = "RotationGroups/applyTemplate"

	// Notify domain.
	EndpointListNotifications  = "Notify/listUserNotifications"
	EndpointMarkRead           = "Notify/markRead"
	EndpointDeleteNotification = "Notify/deleteNotification"
)
