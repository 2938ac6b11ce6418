// Package pdnstest runs an in-memory PowerDNS Admin API for tests.
package pdnstest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
)

const (
	Username = "ansible"
	Password = "password"
	APIKey   = "1234567890"
)

// Request is a call the fake received.
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[int]cloudprovider.Account
	nextID   int
	zones    map[string]*cloudprovider.Zone
	servers  []cloudprovider.Server
	requests []Request
}

func NewServer(t *testing.T) *Server {
	s := &Server{
		accounts: map[int]cloudprovider.Account{},
		nextID:   1,
		zones:    map[string]*cloudprovider.Zone{},
		servers: []cloudprovider.Server{
			{ID: "localhost", Type: "Server", DaemonType: "authoritative", Version: "4.8.3", URL: "/api/v1/servers/localhost"},
		},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) AddAccount(a cloudprovider.Account) cloudprovider.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID
	s.nextID++
	s.accounts[a.ID] = a
	return a
}

func (s *Server) Account(name string) (cloudprovider.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Name == name {
			return a, true
		}
	}
	return cloudprovider.Account{}, false
}

func (s *Server) AddZone(z cloudprovider.Zone) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z.ID == "" {
		z.ID = z.Name
	}
	s.zones[z.Name] = &z
}

func (s *Server) Zone(name string) (cloudprovider.Zone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zones[name]
	if !ok {
		return cloudprovider.Zone{}, false
	}
	return *z, true
}

// Requests returns every call received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Mutations returns the non-GET calls received so far.
func (s *Server) Mutations() []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method != http.MethodGet {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := Request{Method: r.Method, Path: r.URL.Path}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &req.Body)
	}
	s.requests = append(s.requests, req)

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/v1/pdnsadmin/accounts"):
		if user, pass, ok := r.BasicAuth(); !ok || user != Username || pass != Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		s.handleAccounts(w, r, req, parts[4:])
	case strings.HasPrefix(r.URL.Path, "/api/v1/servers"):
		if r.Header.Get("X-API-Key") != APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		s.handleServers(w, r, req, parts[3:])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request, req Request, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			ids := make([]int, 0, len(s.accounts))
			for id := range s.accounts {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			list := make([]cloudprovider.Account, 0, len(ids))
			for _, id := range ids {
				list = append(list, s.accounts[id])
			}
			writeJSON(w, http.StatusOK, list)
		case http.MethodPost:
			a := cloudprovider.Account{ID: s.nextID, Name: str(req.Body["name"]),
				Description: str(req.Body["description"]), Contact: str(req.Body["contact"]), Mail: str(req.Body["mail"])}
			s.nextID++
			s.accounts[a.ID] = a
			writeJSON(w, http.StatusCreated, a)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, _ := strconv.Atoi(rest[0])
	a, ok := s.accounts[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		return
	}
	switch r.Method {
	case http.MethodPut:
		if v := str(req.Body["description"]); v != "" {
			a.Description = v
		}
		if v := str(req.Body["contact"]); v != "" {
			a.Contact = v
		}
		if v := str(req.Body["mail"]); v != "" {
			a.Mail = v
		}
		s.accounts[id] = a
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		delete(s.accounts, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request, req Request, rest []string) {
	if len(rest) == 0 {
		writeJSON(w, http.StatusOK, s.servers)
		return
	}
	if len(rest) < 2 || rest[1] != "zones" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if len(rest) == 2 {
		switch r.Method {
		case http.MethodGet:
			names := make([]string, 0, len(s.zones))
			for name := range s.zones {
				names = append(names, name)
			}
			sort.Strings(names)
			list := make([]cloudprovider.Zone, 0, len(names))
			for _, name := range names {
				z := *s.zones[name]
				z.RRSets = nil
				list = append(list, z)
			}
			writeJSON(w, http.StatusOK, list)
		case http.MethodPost:
			name := str(req.Body["name"])
			if _, exists := s.zones[name]; exists {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "Conflict"})
				return
			}
			z := &cloudprovider.Zone{ID: name, Name: name, Type: "Zone", Kind: str(req.Body["kind"]),
				SOAEditAPI: str(req.Body["soa_edit_api"]), Account: str(req.Body["account"]), Serial: 1}
			s.zones[name] = z
			writeJSON(w, http.StatusCreated, z)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	z, ok := s.zones[rest[2]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, z)
	case http.MethodPut:
		if v := str(req.Body["kind"]); v != "" {
			z.Kind = v
		}
		if v := str(req.Body["soa_edit_api"]); v != "" {
			z.SOAEditAPI = v
		}
		if v := str(req.Body["account"]); v != "" {
			z.Account = v
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		delete(s.zones, z.Name)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPatch:
		s.patch(z, req.Body)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) patch(z *cloudprovider.Zone, body map[string]any) {
	data, _ := json.Marshal(body["rrsets"])
	var changes []cloudprovider.RRSet
	_ = json.Unmarshal(data, &changes)

	for _, change := range changes {
		kept := z.RRSets[:0]
		for _, rr := range z.RRSets {
			if !(cloudprovider.SameName(rr.Name, change.Name) && rr.Type == change.Type) {
				kept = append(kept, rr)
			}
		}
		z.RRSets = kept
		if change.ChangeType == cloudprovider.ChangeTypeReplace {
			change.ChangeType = ""
			z.RRSets = append(z.RRSets, change)
		}
	}
	z.Serial++
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
