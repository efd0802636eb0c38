// Package placetopaytest runs an in-process stand-in for the PlacetoPay
// sandbox. It decides purchases by the sandbox's published test card numbers
// and answers reversals the way the sandbox does.
package placetopaytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
)

const (
	Login     = "test-login"
	SecretKey = "test-secret-key"

	MessageAuthFailed         = "Autenticación fallida 102"
	MessageDuplicateReference = "La referencia ya fue utilizada"
	MessageAuthorizationMatch = "La autorización no corresponde a la transacción"
	MessageUnsupportedAction  = "Acción no soportada"
)

// Sandbox card numbers with a fixed outcome.
const (
	DinersApproved    = "36545400000008"
	DinersRejected    = "36545400000248"
	VisaApproved      = "4110760000000081"
	VisaRejected      = "4110760000000016"
	VisaApproved3DS   = "4110760000000008"
	firstInternalRef  = 1000000
	rejectedAuthCode  = "000000"
	approvedAuthStart = 100000
)

type record struct {
	resp     placetopay.TransactionResponse
	reversed bool
}

type rawReply struct {
	status int
	body   string
}

// Server is an httptest.Server speaking the gateway API.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	nextRef      int64
	transactions map[int64]*record
	references   map[string]int64
	injected     []rawReply
	calls        map[string]int
	now          func() time.Time
}

// NewServer starts a fake processor. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		nextRef:      firstInternalRef,
		transactions: make(map[int64]*record),
		references:   make(map[string]int64),
		calls:        make(map[string]int),
		now:          time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /gateway/process", s.handleProcess)
	mux.HandleFunc("POST /gateway/transaction", s.handleTransaction)
	mux.HandleFunc("POST /gateway/query", s.handleQuery)

	s.Server = httptest.NewServer(s.intercept(mux))
	return s
}

// InjectRaw makes the next call answer with status and body verbatim.
// Injected replies queue in order.
func (s *Server) InjectRaw(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.injected = append(s.injected, rawReply{status: status, body: body})
}

// Calls reports how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		var reply *rawReply
		if len(s.injected) > 0 {
			reply = &s.injected[0]
			s.injected = s.injected[1:]
		}
		s.mu.Unlock()

		if reply != nil {
			w.WriteHeader(reply.status)
			_, _ = w.Write([]byte(reply.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req placetopay.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "XN", "Petición inválida")
		return
	}
	if !placetopay.Verify(req.Auth, Login, SecretKey) {
		s.fail(w, http.StatusUnauthorized, "401", MessageAuthFailed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.references[req.Payment.Reference]; seen {
		s.writeLocked(w, http.StatusBadRequest, s.status(domain.StatusFailed, "XD", MessageDuplicateReference), nil)
		return
	}

	approved := decide(req)
	ref := s.nextRef
	s.nextRef++

	card := req.Instrument.Card
	resp := placetopay.TransactionResponse{
		Date:              s.now().Format(time.RFC3339),
		TransactionDate:   s.now().Format(time.RFC3339),
		InternalReference: ref,
		Reference:         req.Payment.Reference,
		Franchise:         string(domain.Card{Number: card.Number}.Franchise()),
		Amount:            &req.Payment.Amount,
		Receipt:           placetopay.FlexString(fmt.Sprintf("%d", ref)),
		Type:              "AUTH_ONLY",
		LastDigits:        domain.Card{Number: card.Number}.LastDigits(),
		Provider:          "INTERDIN",
	}
	if approved {
		resp.Status = s.status(domain.StatusApproved, "00", domain.MessageApproved)
		resp.Authorization = placetopay.FlexString(fmt.Sprintf("%06d", approvedAuthStart+ref%900000))
	} else {
		resp.Status = s.status(domain.StatusRejected, "05", domain.MessageRejected)
		resp.Authorization = rejectedAuthCode
	}

	s.transactions[ref] = &record{resp: resp}
	s.references[req.Payment.Reference] = ref
	s.writeLocked(w, http.StatusOK, nil, &resp)
}

func decide(req placetopay.ProcessRequest) bool {
	switch req.Instrument.Card.Number {
	case DinersApproved, VisaApproved:
		return true
	case VisaApproved3DS:
		// the challenge is skipped in the sandbox but the flow must be requested
		return req.Use3DS && req.ReturnURL != ""
	}
	return false
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	var req placetopay.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "XN", "Petición inválida")
		return
	}
	if !placetopay.Verify(req.Auth, Login, SecretKey) {
		s.fail(w, http.StatusUnauthorized, "401", MessageAuthFailed)
		return
	}
	if req.Action != placetopay.ActionReverse {
		s.fail(w, http.StatusBadRequest, "XA", MessageUnsupportedAction)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.transactions[req.InternalReference]
	if !ok || original.resp.Status.Status != string(domain.StatusApproved) {
		s.writeLocked(w, http.StatusBadRequest, s.status(domain.StatusFailed, "XR", domain.MessageInvalidInternalReference), nil)
		return
	}
	if string(original.resp.Authorization) != req.Authorization {
		s.writeLocked(w, http.StatusBadRequest, s.status(domain.StatusFailed, "XU", MessageAuthorizationMatch), nil)
		return
	}
	if original.reversed {
		s.writeLocked(w, http.StatusBadRequest, s.status(domain.StatusFailed, "XV", domain.MessageAlreadyReversed), nil)
		return
	}

	original.reversed = true
	original.resp.Refunded = true

	ref := s.nextRef
	s.nextRef++
	resp := original.resp
	resp.Status = s.status(domain.StatusApproved, "00", domain.MessageApproved)
	resp.InternalReference = ref
	resp.Type = "REVERSE"
	resp.Refunded = true
	resp.Receipt = placetopay.FlexString(fmt.Sprintf("%d", ref))

	s.writeLocked(w, http.StatusOK, nil, &resp)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req placetopay.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, "XN", "Petición inválida")
		return
	}
	if !placetopay.Verify(req.Auth, Login, SecretKey) {
		s.fail(w, http.StatusUnauthorized, "401", MessageAuthFailed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.transactions[req.InternalReference]
	if !ok {
		s.writeLocked(w, http.StatusBadRequest, s.status(domain.StatusFailed, "XR", domain.MessageInvalidInternalReference), nil)
		return
	}
	resp := rec.resp
	s.writeLocked(w, http.StatusOK, nil, &resp)
}

func (s *Server) status(status domain.DecisionStatus, reason, message string) *placetopay.StatusDTO {
	return &placetopay.StatusDTO{
		Status:  string(status),
		Reason:  reason,
		Message: message,
		Date:    s.now().Format(time.RFC3339),
	}
}

func (s *Server) fail(w http.ResponseWriter, code int, reason, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLocked(w, code, s.status(domain.StatusFailed, reason, message), nil)
}

func (s *Server) writeLocked(w http.ResponseWriter, code int, status *placetopay.StatusDTO, resp *placetopay.TransactionResponse) {
	if resp == nil {
		resp = &placetopay.TransactionResponse{Status: status}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
