package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ticket_desk/pkg/model"
	"ticket_desk/pkg/query"
)

const ticketJSON = `{"id":1,"title":"Cannot log in","description":"Been stuck for 2 days","category":"account","priority":"high","status":"open","created_at":"2026-10-01T10:00:00Z"}`

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "ftp://x/api", "http://"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
}

func TestListTickets_SendsOnlyNonEmptyParams(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		io.WriteString(w, "["+ticketJSON+"]")
	})

	tickets, err := c.ListTickets(context.Background(), query.Compose("log in", "", model.PriorityHigh, ""))
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if gotPath != "/api/tickets/" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "priority=high&search=log+in" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(tickets) != 1 || tickets[0].ID != "1" || tickets[0].Category != model.CategoryAccount {
		t.Errorf("tickets = %+v", tickets)
	}
}

func TestCreateTicket_OmitsEmptyAdvisoryFields(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tickets/" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, ticketJSON)
	})

	_, err := c.CreateTicket(context.Background(), model.Draft{Title: " Cannot log in ", Description: "Been stuck for 2 days"})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if _, ok := body["category"]; ok {
		t.Error("empty category should be omitted")
	}
	if _, ok := body["priority"]; ok {
		t.Error("empty priority should be omitted")
	}
	if body["status"] != "open" || body["title"] != "Cannot log in" {
		t.Errorf("body = %v", body)
	}
}

func TestUpdateStatus_PatchesTicketPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/api/tickets/1/" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		io.WriteString(w, strings.Replace(ticketJSON, `"status":"open"`, `"status":"`+in["status"]+`"`, 1))
	})

	got, err := c.UpdateStatus(context.Background(), "1", model.StatusResolved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != model.StatusResolved {
		t.Errorf("status = %s", got.Status)
	}
}

func TestFailureKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    Kind
		message string
	}{
		{
			name: "server detail",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				io.WriteString(w, `{"detail":"Not found."}`)
			},
			kind:    KindServer,
			message: "Not found.",
		},
		{
			name: "server field errors",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"title":["This field is required."],"description":["This field may not be blank."]}`)
			},
			kind:    KindServer,
			message: "description: This field may not be blank.; title: This field is required.",
		},
		{
			name: "server plain text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				io.WriteString(w, "upstream down")
			},
			kind:    KindServer,
			message: "upstream down",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"suggested_category":`)
			},
			kind: KindDecode,
		},
		{
			name: "missing field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"suggested_category":"billing"}`)
			},
			kind: KindDecode,
		},
		{
			name: "unknown enum",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"suggested_category":"hardware","suggested_priority":"low"}`)
			},
			kind: KindDecode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.Classify(context.Background(), "my invoice is wrong")
			if !IsKind(err, tt.kind) {
				t.Fatalf("err = %v, want kind %s", err, tt.kind)
			}
			if tt.message != "" {
				gerr := err.(*Error)
				if gerr.Message != tt.message {
					t.Errorf("message = %q, want %q", gerr.Message, tt.message)
				}
				if gerr.Op != OpClassify {
					t.Errorf("op = %q", gerr.Op)
				}
			}
		})
	}
}

func TestListTickets_DecodeFailures(t *testing.T) {
	for _, body := range []string{`null`, `{"results":[]}`, `[{"id":1,"title":"x"}]`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		})
		if _, err := c.ListTickets(context.Background(), query.Query{}); !IsKind(err, KindDecode) {
			t.Errorf("body %s: err = %v, want decode failure", body, err)
		}
	}
}

func TestTimeoutIsNetworkFailure(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.Stats(context.Background())
	if !IsKind(err, KindNetwork) {
		t.Fatalf("err = %v, want network failure", err)
	}
}

func TestConnectionRefusedIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url + "/api")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Stats(context.Background()); !IsKind(err, KindNetwork) {
		t.Fatalf("err = %v, want network failure", err)
	}
}

func TestStats_MissingCountersAreZero(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tickets/stats/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		io.WriteString(w, `{"total_tickets":4,"priority_breakdown":{"low":3,"high":1}}`)
	})

	s, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.TotalTickets != 4 || s.OpenTickets != 0 || s.AvgTicketsPerDay != 0 {
		t.Errorf("stats = %+v", s)
	}
	if len(s.PriorityBreakdown) != 2 || s.PriorityBreakdown[0].Name != "low" {
		t.Errorf("priority breakdown = %+v", s.PriorityBreakdown)
	}
}
