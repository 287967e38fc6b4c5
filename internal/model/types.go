package model

// DutyStatus is the lifecycle status of a duty.
//
// Assigned requires an assignee and Open requires none; Done is reachable
// from either. Reopening returns to Open without clearing any history.
type DutyStatus string

const (
	StatusOpen     DutyStatus = "Open"
	StatusAssigned DutyStatus = "Assigned"
	StatusDone     DutyStatus = "Done"
)

// Role is a member's role within a single event. Roles are keyed per event
// and are not globally unique.
type Role string

const (
	RoleOrganizer  Role = "Organizer"
	RoleDutyMember Role = "DutyMember"
)

// Duty is a unit of work attached to an event. The owning event id never
// changes after creation. Instant fields are canonical RFC3339 UTC strings.
type Duty struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	DueAt     string     `json:"dueAt"`
	Status    DutyStatus `json:"status"`
	Assignee  string     `json:"assignee,omitempty"`
	Event     string     `json:"event"`
	UpdatedAt string     `json:"updatedAt"`
}

// Event is a time-bounded activity that owns a set of duties and a
// membership list. The Duties slice is populated lazily by the duty cache;
// an event fetched on its own carries an empty list.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
	Active   bool   `json:"active"`
	Duties   []Duty `json:"duties"`
}

// Member is one (actor, role) entry in an event's membership list.
type Member struct {
	Actor string `json:"actor"`
	Role  Role   `json:"role"`
}

// Template is a reusable, owner-scoped blueprint of members and standard
// duty titles. A template is independent of any event until applied.
type Template struct {
	ID             string   `json:"id"`
	Owner          string   `json:"owner"`
	Title          string   `json:"title"`
	Members        []string `json:"members"`
	StandardDuties []string `json:"standardDuties"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

// Notification is a per-recipient notification item. It carries no
// back-reference to duties or events.
type Notification struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
	Unread    bool   `json:"unread"`
}
