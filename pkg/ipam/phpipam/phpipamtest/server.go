// Package phpipamtest runs an in-memory phpIPAM API for tests.
package phpipamtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

const (
	AppID   = "ansible"
	AppCode = "s3cr3t"
)

type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

// Address is a stored address row.
type Address struct {
	ID       int    `json:"id"`
	SubnetID int    `json:"subnetId"`
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	Tag      int    `json:"tag"`
}

type Subnet struct {
	ID     int    `json:"id"`
	Subnet string `json:"subnet"`
	Mask   int    `json:"mask"`
	// FirstFree is what /addresses/first_free answers for this subnet.
	FirstFree string `json:"-"`
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	addresses map[int]Address
	subnets   map[int]Subnet
	nextID    int
	requests  []Request
}

func NewServer(t *testing.T) *Server {
	s := &Server{
		addresses: map[int]Address{},
		subnets:   map[int]Subnet{},
		nextID:    1,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) AddSubnet(sub Subnet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subnets[sub.ID] = sub
}

func (s *Server) AddAddress(a Address) Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextID
		s.nextID++
	}
	s.addresses[a.ID] = a
	return a
}

func (s *Server) Addresses() []Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Address, 0, len(s.addresses))
	for _, a := range s.addresses {
		out = append(out, a)
	}
	return out
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := Request{Method: r.Method, Path: r.URL.Path}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &req.Body)
	}
	s.requests = append(s.requests, req)

	prefix := "/api/" + AppID + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		reply(w, http.StatusNotFound, "Invalid application id", nil)
		return
	}
	if r.Header.Get("token") != AppCode {
		reply(w, http.StatusUnauthorized, "Invalid token", nil)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"), "/")
	switch {
	case parts[0] == "addresses" && r.Method == http.MethodPost && len(parts) == 1:
		s.reserve(w, req.Body)
	case parts[0] == "addresses" && r.Method == http.MethodDelete && len(parts) == 3:
		s.release(w, parts[1], parts[2])
	case parts[0] == "addresses" && len(parts) == 3 && parts[1] == "search":
		s.search(w, parts[2])
	case parts[0] == "addresses" && len(parts) == 3 && parts[1] == "first_free":
		s.firstFree(w, parts[2])
	case parts[0] == "subnets" && len(parts) == 4 && parts[1] == "cidr":
		s.cidr(w, parts[2], parts[3])
	default:
		reply(w, http.StatusNotFound, "Invalid request", nil)
	}
}

func (s *Server) reserve(w http.ResponseWriter, body map[string]any) {
	ip, _ := body["ip"].(string)
	for _, a := range s.addresses {
		if a.IP == ip {
			reply(w, http.StatusConflict, "IP address already exists", nil)
			return
		}
	}
	subnetID, _ := body["subnetId"].(float64)
	tag, _ := body["tag"].(float64)
	hostname, _ := body["hostname"].(string)
	a := Address{ID: s.nextID, SubnetID: int(subnetID), IP: ip, Hostname: hostname, Tag: int(tag)}
	s.nextID++
	s.addresses[a.ID] = a
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code": http.StatusCreated, "success": true, "message": "Address created", "id": strconv.Itoa(a.ID),
	})
}

func (s *Server) release(w http.ResponseWriter, ipID, subnetID string) {
	id, _ := strconv.Atoi(ipID)
	sub, _ := strconv.Atoi(subnetID)
	a, ok := s.addresses[id]
	if !ok || a.SubnetID != sub {
		reply(w, http.StatusNotFound, "Address does not exist", nil)
		return
	}
	delete(s.addresses, id)
	reply(w, http.StatusOK, "Address deleted", nil)
}

func (s *Server) search(w http.ResponseWriter, ip string) {
	var found []Address
	for _, a := range s.addresses {
		if a.IP == ip {
			found = append(found, a)
		}
	}
	if len(found) == 0 {
		reply(w, http.StatusOK, "Address not found", nil)
		return
	}
	reply(w, http.StatusOK, "", found)
}

func (s *Server) firstFree(w http.ResponseWriter, subnetID string) {
	id, _ := strconv.Atoi(subnetID)
	sub, ok := s.subnets[id]
	if !ok {
		reply(w, http.StatusNotFound, "Invalid subnet Id", nil)
		return
	}
	if sub.FirstFree == "" {
		reply(w, http.StatusOK, "No free addresses found", nil)
		return
	}
	reply(w, http.StatusOK, "", sub.FirstFree)
}

func (s *Server) cidr(w http.ResponseWriter, network, mask string) {
	var found []Subnet
	for _, sub := range s.subnets {
		if sub.Subnet == network && strconv.Itoa(sub.Mask) == mask {
			found = append(found, sub)
		}
	}
	if len(found) == 0 {
		reply(w, http.StatusOK, "No subnets found", nil)
		return
	}
	reply(w, http.StatusOK, "", found)
}

func reply(w http.ResponseWriter, status int, message string, data any) {
	body := map[string]any{"code": status, "success": status < 300}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
