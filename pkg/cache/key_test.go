package cache

import (
	"strings"
	"testing"
)

func TestNewKey_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		endpoint string
		body     []byte
		want     Key
	}{
		{
			name:     "trims slashes and uppercases method",
			method:   "post",
			endpoint: "/games/",
			body:     nil,
			want:     Key{Endpoint: "games", Method: "POST"},
		},
		{
			name:     "empty body has zero hash",
			method:   "GET",
			endpoint: "platforms",
			body:     []byte{},
			want:     Key{Endpoint: "platforms", Method: "GET"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewKey(tt.method, tt.endpoint, tt.body)
			if got != tt.want {
				t.Errorf("NewKey() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewKey_BodyDistinguishesQueries(t *testing.T) {
	a := NewKey("POST", "games", []byte("fields name; limit 5;"))
	b := NewKey("POST", "games", []byte("fields name; limit 10;"))

	if a == b {
		t.Error("different bodies must produce different keys")
	}
	if a.String() == b.String() {
		t.Errorf("key strings must differ: %s", a.String())
	}
}

func TestNewKey_Deterministic(t *testing.T) {
	body := []byte("fields name,rating; where rating > 80;")

	a := NewKey("POST", "games", body)
	b := NewKey("POST", "games", body)

	if a.String() != b.String() {
		t.Errorf("same request must produce same key: %s != %s", a.String(), b.String())
	}
}

func TestKey_String_Format(t *testing.T) {
	key := NewKey("POST", "games", []byte("fields name;"))

	s := key.String()
	if !strings.HasPrefix(s, "igdb:POST:games:") {
		t.Errorf("unexpected key format: %s", s)
	}

	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		t.Fatalf("expected 4 key segments, got %d: %s", len(parts), s)
	}
	if len(parts[3]) != 16 {
		t.Errorf("body hash segment should be 16 hex chars, got %q", parts[3])
	}
}
