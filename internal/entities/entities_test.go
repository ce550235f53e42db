package entities

import (
	"errors"
	"strings"
	"testing"

	"trustdesk-cli/internal/model"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"users":          "users",
		"User":           "users",
		"c3":             "inspections",
		"c3-inspections": "inspections",
		"activity-logs":  "activity",
		" trustmark ":    "trustmarks",
	}
	for in, want := range cases {
		got, ok := Lookup(in)
		if !ok || got.Name != want {
			t.Fatalf("Lookup(%q) = %q, %v; want %q", in, got.Name, ok, want)
		}
	}
	if _, ok := Lookup("invoices"); ok {
		t.Fatalf("unexpected match for unknown entity")
	}
}

func TestNames_MenuOrder(t *testing.T) {
	t.Parallel()

	got := strings.Join(Names(), ",")
	want := "users,projects,complaints,inspections,trustmarks,notifications,activity"
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestBuild_ParsesNumbersAndReportsBadOnes(t *testing.T) {
	t.Parallel()

	in, err := Projects().Build(map[string]string{"name": " Loft ", "assigned_user_id": "12"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := in.(model.ProjectInput)
	if p.Name != "Loft" || p.AssignedUserID == nil || *p.AssignedUserID != 12 {
		t.Fatalf("unexpected input: %+v", p)
	}

	_, err = Complaints().Build(map[string]string{"project_id": "abc", "subject": "Damp"})
	var ie *model.InputError
	if !errors.As(err, &ie) || ie.Fields[0].Field != "project_id" {
		t.Fatalf("expected project_id error; got %v", err)
	}

	_, err = Notifications().Build(map[string]string{"title": "x", "read": "maybe"})
	if !errors.As(err, &ie) || ie.Fields[0].Field != "read" {
		t.Fatalf("expected read error; got %v", err)
	}
}

func TestValuesRoundTripThroughBuild(t *testing.T) {
	t.Parallel()

	uid := int64(4)
	orig := model.Project{ID: 9, Name: "Loft", Postcode: "LS1 4AP", AssignedUserID: &uid}
	in, err := Projects().Build(Projects().Values(orig))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := in.(model.ProjectInput)
	if p.Name != orig.Name || p.Postcode != orig.Postcode || *p.AssignedUserID != 4 {
		t.Fatalf("prefill lost data: %+v", p)
	}
}

func TestTrustmarkPhotosSplit(t *testing.T) {
	t.Parallel()

	in, err := Trustmarks().Build(map[string]string{"project_id": "1", "photos": "a.jpg, b.jpg,,"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := in.(model.TrustmarkInput).Photos; len(got) != 2 || got[1] != "b.jpg" {
		t.Fatalf("photos: %v", got)
	}
}

func TestRowAndDetail(t *testing.T) {
	t.Parallel()

	u := model.User{ID: 3, Name: "Ann", Email: "ann@example.com", Role: model.RoleAdmin}
	row := Users().Row(u)
	if strings.Join(row, "|") != "3|Ann|ann@example.com|admin" {
		t.Fatalf("row: %v", row)
	}
	md := Users().Detail(u)
	if !strings.HasPrefix(md, "# Ann") || !strings.Contains(md, "| Phone | - |") {
		t.Fatalf("detail:\n%s", md)
	}
}

func TestActivityIsReadOnly(t *testing.T) {
	t.Parallel()

	if !Activity().ReadOnly() {
		t.Fatalf("activity must be read-only")
	}
	if _, err := Activity().Build(nil); err == nil {
		t.Fatalf("expected build to fail for read-only entity")
	}
	for _, e := range All() {
		if e.Name != "activity" && e.ReadOnly {
			t.Fatalf("%s unexpectedly read-only", e.Name)
		}
	}
}
