package entities

import (
	"fmt"
	"net/http"
	"strings"

	"trustdesk-cli/internal/api"
	"trustdesk-cli/internal/model"
)

func detail(title string, rows [][2]string, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r[0], strings.ReplaceAll(orDash(r[1]), "|", "\\|"))
	}
	if body = strings.TrimSpace(body); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

var roles = []string{"admin", "manager", "auditor", "inspector", "installer"}

func Users() Descriptor[model.User] {
	return Descriptor[model.User]{
		Name:     "users",
		Singular: "user",
		Title:    "Users",
		Spec:     api.ResourceSpec{Path: "/users"},
		Columns: []Column[model.User]{
			{Title: "ID", Width: 6, Value: func(u model.User) string { return idString(u.ID) }},
			{Title: "Name", Width: 24, Value: func(u model.User) string { return u.Name }},
			{Title: "Email", Width: 30, Value: func(u model.User) string { return u.Email }},
			{Title: "Role", Width: 12, Value: func(u model.User) string { return string(u.Role) }},
		},
		Fields: []Field{
			{Key: "name", Label: "Name", Required: true},
			{Key: "email", Label: "Email", Required: true},
			{Key: "role", Label: "Role", Options: roles},
			{Key: "phone", Label: "Phone"},
			{Key: "password", Label: "Password", Help: "at least 8 characters; leave empty to keep"},
		},
		Values: func(u model.User) map[string]string {
			return map[string]string{"name": u.Name, "email": u.Email, "role": string(u.Role), "phone": u.Phone}
		},
		Build: func(v map[string]string) (any, error) {
			b := newBuilder(v)
			in := model.UserInput{
				Name:     b.str("name"),
				Email:    b.str("email"),
				Role:     model.Role(b.str("role")),
				Phone:    b.str("phone"),
				Password: b.str("password"),
			}
			return in, b.err()
		},
		Detail: func(u model.User) string {
			return detail(u.Name, [][2]string{
				{"ID", idString(u.ID)},
				{"Email", u.Email},
				{"Role", string(u.Role)},
				{"Phone", u.Phone},
				{"Created", dateString(u.CreatedAt)},
			}, "")
		},
	}
}

func Projects() Descriptor[model.Project] {
	return Descriptor[model.Project]{
		Name:     "projects",
		Singular: "project",
		Title:    "Projects",
		Spec:     api.ResourceSpec{Path: "/projects", CreateSuffix: "/store", UpdateMethod: http.MethodPost},
		Columns: []Column[model.Project]{
			{Title: "ID", Width: 6, Value: func(p model.Project) string { return idString(p.ID) }},
			{Title: "Ref", Width: 10, Value: func(p model.Project) string { return p.Reference }},
			{Title: "Name", Width: 28, Value: func(p model.Project) string { return p.Name }},
			{Title: "Postcode", Width: 10, Value: func(p model.Project) string { return p.Postcode }},
			{Title: "Stage", Width: 14, Value: func(p model.Project) string { return p.Stage }},
		},
		Fields: []Field{
			{Key: "reference", Label: "Reference"},
			{Key: "name", Label: "Name", Required: true},
			{Key: "address", Label: "Address"},
			{Key: "postcode", Label: "Postcode"},
			{Key: "client_name", Label: "Client"},
			{Key: "stage", Label: "Stage"},
			{Key: "assigned_user_id", Label: "Assigned user ID"},
		},
		Values: func(p model.Project) map[string]string {
			return map[string]string{
				"reference":        p.Reference,
				"name":             p.Name,
				"address":          p.Address,
				"postcode":         p.Postcode,
				"client_name":      p.ClientName,
				"stage":            p.Stage,
				"assigned_user_id": optIDString(p.AssignedUserID),
			}
		},
		Build: func(v map[string]string) (any, error) {
			b := newBuilder(v)
			in := model.ProjectInput{
				Reference:      b.str("reference"),
				Name:           b.str("name"),
				Address:        b.str("address"),
				Postcode:       b.str("postcode"),
				ClientName:     b.str("client_name"),
				Stage:          b.str("stage"),
				AssignedUserID: b.optInt64("assigned_user_id"),
			}
			return in, b.err()
		},
		Detail: func(p model.Project) string {
			return detail(p.Name, [][2]string{
				{"ID", idString(p.ID)},
				{"Reference", p.Reference},
				{"Address", p.Address},
				{"Postcode", p.Postcode},
				{"Client", p.ClientName},
				{"Stage", p.Stage},
				{"Assigned user", optIDString(p.AssignedUserID)},
				{"Created", dateString(p.CreatedAt)},
			}, "")
		},
	}
}

func Complaints() Descriptor[model.Complaint] {
	return Descriptor[model.Complaint]{
		Name:     "complaints",
		Singular: "complaint",
		Title:    "Complaints",
		Spec:     api.ResourceSpec{Path: "/complaints"},
		Columns: []Column[model.Complaint]{
			{Title: "ID", Width: 6, Value: func(c model.Complaint) string { return idString(c.ID) }},
			{Title: "Project", Width: 8, Value: func(c model.Complaint) string { return idString(c.ProjectID) }},
			{Title: "Subject", Width: 32, Value: func(c model.Complaint) string { return c.Subject }},
			{Title: "Status", Width: 12, Value: func(c model.Complaint) string { return string(c.Status) }},
			{Title: "Created", Width: 16, Value: func(c model.Complaint) string { return dateString(c.CreatedAt) }},
		},
		Fields: []Field{
			{Key: "project_id", Label: "Project ID", Required: true},
			{Key: "subject", Label: "Subject", Required: true},
			{Key: "description", Label: "Description"},
			{Key: "status", Label: "Status", Options: []string{"open", "in_progress", "resolved"}},
			{Key: "photo", Label: "Photo", Help: "path to an image to upload", File: true},
		},
		Values: func(c model.Complaint) map[string]string {
			return map[string]string{
				"project_id":  idString(c.ProjectID),
				"subject":     c.Subject,
				"description": c.Description,
				"status":      string(c.Status),
			}
		},
		Build: func(v map[string]string) (any, error) {
			b := newBuilder(v)
			in := model.ComplaintInput{
				ProjectID:   b.int64("project_id"),
				Subject:     b.str("subject"),
				Description: b.str("description"),
				Status:      model.ComplaintStatus(b.str("status")),
				Photo:       b.str("photo"),
			}
			return in, b.err()
		},
		Detail: func(c model.Complaint) string {
			body := c.Description
			if c.PhotoURL != "" {
				body += "\n\nPhoto: " + c.PhotoURL
			}
			return detail(c.Subject, [][2]string{
				{"ID", idString(c.ID)},
				{"Project", idString(c.ProjectID)},
				{"Status", string(c.Status)},
				{"Created", dateString(c.CreatedAt)},
			}, body)
		},
	}
}

func Inspections() Descriptor[model.Inspection] {
	return Descriptor[model.Inspection]{
		Name:     "inspections",
		Singular: "inspection",
		Title:    "C3 inspections",
		Aliases:  []string{"c3", "c3-inspections"},
		Spec:     api.ResourceSpec{Path: "/c3-inspections", CreateSuffix: "/store"},
		Columns: []Column[model.Inspection]{
			{Title: "ID", Width: 6, Value: func(i model.Inspection) string { return idString(i.ID) }},
			{Title: "Project", Width: 8, Value: func(i model.Inspection) string { return idString(i.ProjectID) }},
			{Title: "Inspector", Width: 20, Value: func(i model.Inspection) string { return i.Inspector }},
			{Title: "Result", Width: 10, Value: func(i model.Inspection) string { return i.Result }},
			{Title: "Date", Width: 12, Value: func(i model.Inspection) string { return i.InspectedAt }},
		},
		Fields: []Field{
			{Key: "project_id", Label: "Project ID", Required: true},
			{Key: "inspector", Label: "Inspector", Required: true},
			{Key: "result", Label: "Result", Required: true, Options: []string{"pass", "fail", "advisory"}},
			{Key: "notes", Label: "Notes"},
			{Key: "inspected_at", Label: "Date", Help: "YYYY-MM-DD"},
		},
		Values: func(i model.Inspection) map[string]string {
			return map[string]string{
				"project_id":   idString(i.ProjectID),
				"inspector":    i.Inspector,
				"result":       i.Result,
				"notes":        i.Notes,
				"inspected_at": i.InspectedAt,
			}
		},
		Build: func(v map[string]string) (any, error) {
			b := newBuilder(v)
			in := model.InspectionInput{
				ProjectID:   b.int64("project_id"),
				Inspector:   b.str("inspector"),
				Result:      b.str("result"),
				Notes:       b.str("notes"),
				InspectedAt: b.str("inspected_at"),
			}
			return in, b.err()
		},
		Detail: func(i model.Inspection) string {
			return detail(fmt.Sprintf("Inspection %d", i.ID), [][2]string{
				{"Project", idString(i.ProjectID)},
				{"Inspector", i.Inspector},
				{"Result", i.Result},
				{"Date", i.InspectedAt},
			}, i.Notes)
		},
	}
}

func Trustmarks() Descriptor[model.Trustmark] {
	return Descriptor[model.Trustmark]{
		Name:     "trustmarks",
		Singular: "trustmark",
		Title:    "Trustmark audits",
		Spec:     api.ResourceSpec{Path: "/trustmarks", UpdateMethod: http.MethodPost},
		Columns: []Column[model.Trustmark]{
			{Title: "ID", Width: 6, Value: func(t model.Trustmark) string { return idString(t.ID) }},
			{Title: "Project", Width: 8, Value: func(t model.Trustmark) string { return idString(t.ProjectID) }},
			{Title: "Auditor", Width: 20, Value: func(t model.Trustmark) string { return t.Auditor }},
			{Title: "Status", Width: 10, Value: func(t model.Trustmark) string { return t.Status }},
			{Title: "Audit date", Width: 12, Value: func(t model.Trustmark) string { return t.AuditDate }},
		},
		Fields: []Field{
			{Key: "project_id", Label: "Project ID", Required: true},
			{Key: "auditor", Label: "Auditor"},
			{Key: "status", Label: "Status", Options: []string{"pending", "passed", "failed"}},
			{Key: "notes", Label: "Notes"},
			{Key: "audit_date", Label: "Audit date", Help: "YYYY-MM-DD"},
			{Key: "photos", Label: "Photos", Help: "comma-separated image paths", File: true, Multi: true},
		},
		Values: func(t model.Trustmark) map[string]string {
			return map[string]string{
				"project_id": idString(t.ProjectID),
				"auditor":    t.Auditor,
				"status":     t.Status,
				"notes":      t.Notes,
				"audit_date": t.AuditDate,
			}
		},
		Build: func(v map[string]string) (any, error) {
			b := newBuilder(v)
			in := model.TrustmarkInput{
				ProjectID: b.int64("project_id"),
				Auditor:   b.str("auditor"),
				Status:    b.str("status"),
				Notes:     b.str("notes"),
				AuditDate: b.str("audit_date"),
				Photos:    b.list("photos"),
			}
			return in, b.err()
		},
		Detail: func(t model.Trustmark) string {
			body := t.Notes
			if len(t.PhotoURLs) > 0 {
				body += "\n\n## Photos\n\n- " + strings.Join(t.PhotoURLs, "\n- ")
			}
			return detail(fmt.Sprintf("Trustmark audit %d", t.ID), [][2]string{
				{"Project", idString(t.ProjectID)},
				{"Auditor", t.Auditor},
				{"Status", t.Status},
				{"Audit date", t.AuditDate},
			}, body)
		},
	}
}

func Notifications() Descriptor[model.Notification] {
	readText := func(n model.Notification) string {
		if n.Read() {
			return "yes"
		}
		return "no"
	}
	return Descriptor[model.Notification]{
		Name:     "notifications",
		Singular: "notification",
		Title:    "Notifications",
		Spec:     api.ResourceSpec{Path: "/notifications"},
		Columns: []Column[model.Notification]{
			{Title: "ID", Width: 6, Value: func(n model.Notification) string { return idString(n.ID) }},
			{Title: "Title", Width: 32, Value: func(n model.Notification) string { return n.Title }},
			{Title: "Read", Width: 5, Value: readText},
			{Title: "Created", Width: 16, Value: func(n model.Notification) string { return dateString(n.CreatedAt) }},
		},
		Fields: []Field{
			{Key: "user_id", Label: "User ID", Help: "empty sends to everyone"},
			{Key: "title", Label: "Title", Required: true},
			{Key: "message", Label: "Message"},
			{Key: "read", Label: "Read", Options: []string{"true", "false"}},
		},
		Values: func(n model.Notification) map[string]string {
			return map[string]string{
				"user_id": optIDString(n.UserID),
				"title":   n.Title,
				"message": n.Message,
				"read":    fmt.Sprint(n.Read()),
			}
		},
		Build: func(v map[string]string) (any, error) {
			b := newBuilder(v)
			in := model.NotificationInput{
				UserID:  b.optInt64("user_id"),
				Title:   b.str("title"),
				Message: b.str("message"),
				Read:    b.optBool("read"),
			}
			return in, b.err()
		},
		Detail: func(n model.Notification) string {
			return detail(n.Title, [][2]string{
				{"ID", idString(n.ID)},
				{"User", optIDString(n.UserID)},
				{"Read", readText(n)},
				{"Created", dateString(n.CreatedAt)},
			}, n.Message)
		},
	}
}

// Activity is read-only: the server records it, the console only lists,
// shows and prunes entries.
func Activity() Descriptor[model.ActivityLog] {
	return Descriptor[model.ActivityLog]{
		Name:     "activity",
		Singular: "activity-log",
		Title:    "Activity log",
		Aliases:  []string{"activity-logs", "logs"},
		Spec:     api.ResourceSpec{Path: "/activity-logs", ReadOnly: true},
		Columns: []Column[model.ActivityLog]{
			{Title: "ID", Width: 6, Value: func(a model.ActivityLog) string { return idString(a.ID) }},
			{Title: "Action", Width: 14, Value: func(a model.ActivityLog) string { return a.Action }},
			{Title: "Subject", Width: 28, Value: func(a model.ActivityLog) string { return a.Subject }},
			{Title: "User", Width: 6, Value: func(a model.ActivityLog) string { return optIDString(a.UserID) }},
			{Title: "When", Width: 16, Value: func(a model.ActivityLog) string { return dateString(a.CreatedAt) }},
		},
		Values: func(model.ActivityLog) map[string]string { return map[string]string{} },
		Build: func(map[string]string) (any, error) {
			return nil, api.ErrUnsupported
		},
		Detail: func(a model.ActivityLog) string {
			return detail(fmt.Sprintf("%s %s", a.Action, a.Subject), [][2]string{
				{"ID", idString(a.ID)},
				{"User", optIDString(a.UserID)},
				{"When", dateString(a.CreatedAt)},
			}, a.Description)
		},
	}
}
