package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"重音与标点", "Club Atlético River!", "club-atletico-river"},
		{"首尾连字符", "  --Boca Juniors--  ", "boca-juniors"},
		{"连续分隔符", "San   Martín /  Tucumán", "san-martin-tucuman"},
		{"ñ 与 ü", "Ñandú Pingüino", "nandu-pinguino"},
		{"数字保留", "Club 9 de Julio", "club-9-de-julio"},
		{"空字符串", "", ""},
		{"仅标点", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	once := Slugify("Club Atlético River!")
	if twice := Slugify(once); twice != once {
		t.Errorf("Slugify 不幂等: %q -> %q", once, twice)
	}
}
