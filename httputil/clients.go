package httputil

import (
	"net/http"
	"time"
)

// Clients holds the two HTTP clients the sync uses. The Jambase API is
// slower under load than the Supabase REST surface, so it gets the longer
// timeout.
type Clients struct {
	Jambase  *http.Client
	Supabase *http.Client
}

func NewClients() *Clients {
	return &Clients{
		Jambase:  &http.Client{Timeout: 60 * time.Second},
		Supabase: &http.Client{Timeout: 30 * time.Second},
	}
}
