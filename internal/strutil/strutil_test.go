package strutil

import "testing"

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"user", "user"},
		{"userName", "user_name"},
		{"UserName", "user_name"},
		{"HTTPServer", "http_server"},
		{"parseURL", "parse_url"},
		{"already_snake", "already_snake"},
		{"with-dash", "with_dash"},
		{"with space", "with_space"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ToSnakeCase(tt.in); got != tt.want {
				t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"User", "Users"},
		{"user", "users"},
		{"Company", "Companies"},
		{"city", "cities"},
		{"day", "days"}, // vowel before y
		{"Address", "Addresses"},
		{"box", "boxes"},
		{"quiz", "quizes"},
		{"Branch", "Branches"},
		{"dish", "dishes"},
		{"Person", "People"},
		{"child", "children"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Pluralize(tt.in); got != tt.want {
				t.Errorf("Pluralize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIndexName(t *testing.T) {
	if got := IndexName("Users", false, "email"); got != "idx_Users_email" {
		t.Errorf("IndexName() = %q, want idx_Users_email", got)
	}
	if got := IndexName("Users", true, "email"); got != "uniq_Users_email" {
		t.Errorf("IndexName() = %q, want uniq_Users_email", got)
	}
	if got := IndexName("Users", false, "last_name", "first_name"); got != "idx_Users_last_name_first_name" {
		t.Errorf("IndexName() = %q", got)
	}
}

func TestForeignKeyName(t *testing.T) {
	if got := ForeignKeyName("Users", "company_id"); got != "fk_Users_company_id" {
		t.Errorf("ForeignKeyName() = %q, want fk_Users_company_id", got)
	}
}
