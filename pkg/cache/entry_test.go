package cache

import (
	"testing"
	"time"
)

func TestNewEntry(t *testing.T) {
	body := []byte(`{"total": 100, "products": []}`)
	entry := NewEntry(body, 200, 5*time.Minute)

	if string(entry.Body) != string(body) {
		t.Errorf("Body = %q, want %q", entry.Body, body)
	}
	if entry.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", entry.StatusCode)
	}
	if entry.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}
	if !entry.Expires.After(entry.FetchedAt) {
		t.Error("Expires should be after FetchedAt")
	}
}

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{
			name:    "future expiry",
			expires: time.Now().Add(5 * time.Minute),
			want:    false,
		},
		{
			name:    "past expiry",
			expires: time.Now().Add(-5 * time.Minute),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	t.Run("positive TTL", func(t *testing.T) {
		entry := &Entry{Expires: time.Now().Add(5 * time.Minute)}
		ttl := entry.TTL()
		if ttl <= 0 || ttl > 5*time.Minute {
			t.Errorf("TTL() = %v, want between 0 and 5m", ttl)
		}
	})

	t.Run("expired entry returns zero", func(t *testing.T) {
		entry := &Entry{Expires: time.Now().Add(-time.Minute)}
		if ttl := entry.TTL(); ttl != 0 {
			t.Errorf("TTL() = %v, want 0", ttl)
		}
	})
}
