package model

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleAuditor   Role = "auditor"
	RoleInspector Role = "inspector"
	RoleInstaller Role = "installer"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Project struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference,omitempty"`
	Name           string    `json:"name"`
	Address        string    `json:"address,omitempty"`
	Postcode       string    `json:"postcode,omitempty"`
	ClientName     string    `json:"client_name,omitempty"`
	Stage          string    `json:"stage,omitempty"`
	AssignedUserID *int64    `json:"assigned_user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ComplaintStatus string

const (
	ComplaintOpen       ComplaintStatus = "open"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintResolved   ComplaintStatus = "resolved"
)

type Complaint struct {
	ID          int64           `json:"id"`
	ProjectID   int64           `json:"project_id"`
	Subject     string          `json:"subject"`
	Description string          `json:"description,omitempty"`
	Status      ComplaintStatus `json:"status,omitempty"`
	PhotoURL    string          `json:"photo_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Trustmark is a trustmark audit of a project.
type Trustmark struct {
	ID        int64    `json:"id"`
	ProjectID int64    `json:"project_id"`
	Auditor   string   `json:"auditor,omitempty"`
	Status    string   `json:"status,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	AuditDate string   `json:"audit_date,omitempty"` // YYYY-MM-DD
	PhotoURLs []string `json:"photo_urls,omitempty"`
}

// Inspection is a C3 inspection of a project.
type Inspection struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"project_id"`
	Inspector   string `json:"inspector,omitempty"`
	Result      string `json:"result,omitempty"`
	Notes       string `json:"notes,omitempty"`
	InspectedAt string `json:"inspected_at,omitempty"` // YYYY-MM-DD
}

type Notification struct {
	ID        int64      `json:"id"`
	UserID    *int64     `json:"user_id,omitempty"`
	Title     string     `json:"title"`
	Message   string     `json:"message,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (n Notification) Read() bool { return n.ReadAt != nil }

type ActivityLog struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id,omitempty"`
	Action      string    `json:"action"`
	Subject     string    `json:"subject,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u User) RecordID() int64         { return u.ID }
func (p Project) RecordID() int64      { return p.ID }
func (c Complaint) RecordID() int64    { return c.ID }
func (t Trustmark) RecordID() int64    { return t.ID }
func (i Inspection) RecordID() int64   { return i.ID }
func (n Notification) RecordID() int64 { return n.ID }
func (a ActivityLog) RecordID() int64  { return a.ID }

// Session is what the login endpoint returns.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
