package validator

import (
	"testing"
	"time"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"123E4567-E89B-12D3-A456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	valid := []string{"081234567890", "+6281234567890", "(555) 123-4567", "08 1234 567890"}
	invalid := []string{"12345", "abc0812345678", "0812345678a", "+1234567890123456", ""}
	for _, phone := range valid {
		if !IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = false, want true", phone)
		}
	}
	for _, phone := range invalid {
		if IsValidPhoneNumber(phone) {
			t.Errorf("IsValidPhoneNumber(%q) = true, want false", phone)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	year, month, ok := IsValidMonth("2026-03")
	if !ok || year != 2026 || month != time.March {
		t.Errorf("IsValidMonth(2026-03) = %d, %v, %v", year, month, ok)
	}
	for _, s := range []string{"2026-13", "2026/03", "03-2026", ""} {
		if _, _, ok := IsValidMonth(s); ok {
			t.Errorf("IsValidMonth(%q) = true, want false", s)
		}
	}
}

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		input string
		want  ClockTime
	}{
		{"09:15", ClockTime{Hour: 9, Minute: 15}},
		{"17:30:45", ClockTime{Hour: 17, Minute: 30, Second: 45}},
		{" 08:00 ", ClockTime{Hour: 8}},
	}
	for _, c := range cases {
		got, err := ParseClockTime(c.input)
		if err != nil {
			t.Errorf("ParseClockTime(%q) error = %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseClockTime(%q) = %+v, want %+v", c.input, got, c.want)
		}
	}
	for _, s := range []string{"25:00", "9.15", "", "09:60"} {
		if _, err := ParseClockTime(s); err == nil {
			t.Errorf("ParseClockTime(%q) expected error", s)
		}
	}
}

func TestClockTimeOn(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	day := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC) // 2026-03-03 03:00 WIB
	got := ClockTime{Hour: 9, Minute: 15}.On(day, loc)
	want := time.Date(2026, 3, 3, 9, 15, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	got := errs.Error()
	want := "email: invalid; phone: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "email", Message: "invalid"},
		{Field: "phone", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"email": "invalid", "phone": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestResolvePage(t *testing.T) {
	cases := []struct {
		page, limit, skip int
		want              Page
	}{
		{0, 0, 0, Page{Page: 1, Limit: 20, Offset: 0}},
		{3, 10, 0, Page{Page: 3, Limit: 10, Offset: 20}},
		{1, 500, 0, Page{Page: 1, Limit: 100, Offset: 0}},
		{0, 10, 25, Page{Page: 3, Limit: 10, Offset: 25}},
	}
	for _, c := range cases {
		got := ResolvePage(c.page, c.limit, c.skip)
		if got != c.want {
			t.Errorf("ResolvePage(%d, %d, %d) = %+v, want %+v", c.page, c.limit, c.skip, got, c.want)
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	for input, want := range map[string]string{"": "desc", "ASC": "asc", "desc": "desc"} {
		got, ok := ParseSortOrder(input)
		if !ok || got != want {
			t.Errorf("ParseSortOrder(%q) = %q, %v", input, got, ok)
		}
	}
	if _, ok := ParseSortOrder("sideways"); ok {
		t.Errorf("ParseSortOrder(sideways) should fail")
	}
}
