package status

import "testing"

// TestParse_Valid проверяет разбор всех допустимых статусов.
func TestParse_Valid(t *testing.T) {
	for _, name := range []string{"Pending", "Approved", "Rejected", "Shortlisted", "Reported"} {
		st, err := Parse(name)
		if err != nil {
			t.Errorf("Parse(%q) вернул ошибку: %v", name, err)
		}
		if string(st) != name {
			t.Errorf("Parse(%q) = %q", name, st)
		}
	}
}

// TestParse_Invalid проверяет отклонение значений вне допустимого множества.
func TestParse_Invalid(t *testing.T) {
	for _, name := range []string{"", "pending", "APPROVED", "Deleted", "Archived"} {
		if _, err := Parse(name); err == nil {
			t.Errorf("Parse(%q) не вернул ошибку", name)
		}
	}
}

// TestParseFold проверяет регистронезависимый разбор сегментов URL.
func TestParseFold(t *testing.T) {
	cases := map[string]Status{
		"pending":     StatusPending,
		"APPROVED":    StatusApproved,
		"Shortlisted": StatusShortlisted,
		"reported":    StatusReported,
	}
	for in, want := range cases {
		st, err := ParseFold(in)
		if err != nil {
			t.Errorf("ParseFold(%q) вернул ошибку: %v", in, err)
		}
		if st != want {
			t.Errorf("ParseFold(%q) = %q, ожидался %q", in, st, want)
		}
	}

	if _, err := ParseFold("archived"); err == nil {
		t.Error("ParseFold(\"archived\") не вернул ошибку")
	}
}

// TestCanTransition_Matrix проверяет матрицу переходов workflow.
func TestCanTransition_Matrix(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusShortlisted, true},
		{StatusApproved, StatusRejected, true},
		{StatusApproved, StatusShortlisted, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusPending, true}, // re-open
		{StatusRejected, StatusApproved, false},
		{StatusShortlisted, StatusApproved, true},
		{StatusShortlisted, StatusRejected, true},
		{StatusShortlisted, StatusPending, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, ожидался %v", c.from, c.to, got, c.want)
		}
	}
}

// TestCanTransition_ReportedFromAny проверяет, что жалоба принимается
// из любого состояния.
func TestCanTransition_ReportedFromAny(t *testing.T) {
	for _, from := range All() {
		if !CanTransition(from, StatusReported) {
			t.Errorf("CanTransition(%s, Reported) = false, ожидался true", from)
		}
	}
}

// TestAllowedFrom_Reported проверяет полное множество источников для Reported.
func TestAllowedFrom_Reported(t *testing.T) {
	from := AllowedFrom(StatusReported)
	if len(from) != 5 {
		t.Errorf("AllowedFrom(Reported) содержит %d статусов, ожидалось 5", len(from))
	}
}

// TestAllowedFrom_CopyIsolation проверяет, что AllowedFrom возвращает копию.
func TestAllowedFrom_CopyIsolation(t *testing.T) {
	first := AllowedFrom(StatusApproved)
	first[0] = Status("mutated")

	second := AllowedFrom(StatusApproved)
	for _, s := range second {
		if s == "mutated" {
			t.Fatal("AllowedFrom возвращает внутренний срез, а не копию")
		}
	}
}

// TestStrings проверяет конвертацию статусов в строки.
func TestStrings(t *testing.T) {
	got := Strings([]Status{StatusPending, StatusReported})
	if len(got) != 2 || got[0] != "Pending" || got[1] != "Reported" {
		t.Errorf("Strings = %v", got)
	}
}
