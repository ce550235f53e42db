package model

// Inputs are the request bodies for create and update calls. Fields tagged
// `json:"-"` are local file paths sent as multipart attachments.

type UserInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=admin manager auditor inspector installer"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

type ProjectInput struct {
	Reference      string `json:"reference,omitempty" validate:"omitempty,max=64"`
	Name           string `json:"name" validate:"required,max=255"`
	Address        string `json:"address,omitempty"`
	Postcode       string `json:"postcode,omitempty" validate:"omitempty,max=16"`
	ClientName     string `json:"client_name,omitempty"`
	Stage          string `json:"stage,omitempty"`
	AssignedUserID *int64 `json:"assigned_user_id,omitempty" validate:"omitempty,gt=0"`
}

type ComplaintInput struct {
	ProjectID   int64           `json:"project_id" validate:"required,gt=0"`
	Subject     string          `json:"subject" validate:"required,max=255"`
	Description string          `json:"description,omitempty"`
	Status      ComplaintStatus `json:"status,omitempty" validate:"omitempty,oneof=open in_progress resolved"`
	Photo       string          `json:"-" form:"photo" validate:"omitempty,file"`
}

func (in ComplaintInput) Files() []Attachment {
	if in.Photo == "" {
		return nil
	}
	return []Attachment{{Field: "photo", Path: in.Photo}}
}

type TrustmarkInput struct {
	ProjectID int64    `json:"project_id" validate:"required,gt=0"`
	Auditor   string   `json:"auditor,omitempty"`
	Status    string   `json:"status,omitempty" validate:"omitempty,oneof=pending passed failed"`
	Notes     string   `json:"notes,omitempty"`
	AuditDate string   `json:"audit_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Photos    []string `json:"-" form:"photos" validate:"dive,file"`
}

func (in TrustmarkInput) Files() []Attachment {
	out := make([]Attachment, 0, len(in.Photos))
	for _, p := range in.Photos {
		out = append(out, Attachment{Field: "photos[]", Path: p})
	}
	return out
}

type InspectionInput struct {
	ProjectID   int64  `json:"project_id" validate:"required,gt=0"`
	Inspector   string `json:"inspector" validate:"required"`
	Result      string `json:"result" validate:"required,oneof=pass fail advisory"`
	Notes       string `json:"notes,omitempty"`
	InspectedAt string `json:"inspected_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type NotificationInput struct {
	UserID  *int64 `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	Title   string `json:"title" validate:"required,max=255"`
	Message string `json:"message,omitempty"`
	Read    *bool  `json:"read,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Attachment is a local file uploaded under a multipart field name.
type Attachment struct {
	Field string
	Path  string
}

// WithAttachments is implemented by inputs that may carry files.
type WithAttachments interface {
	Files() []Attachment
}
