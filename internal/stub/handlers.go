package stub

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pastoreohq/go-pastoreo/internal/api"
	"github.com/pastoreohq/go-pastoreo/internal/families"
	"github.com/pastoreohq/go-pastoreo/internal/followups"
	"github.com/pastoreohq/go-pastoreo/internal/groups"
	"github.com/pastoreohq/go-pastoreo/internal/members"
)

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	ChurchSlug string `json:"churchSlug"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}

	s.mu.Lock()
	u := s.users[req.Email]
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}

	token, err := s.mintToken(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "No se pudo iniciar sesión")
		return
	}

	writeJSON(w, http.StatusOK, api.LoginResult{
		AccessToken: token,
		User: api.LoginUser{
			ID:              u.ID,
			FullName:        u.FullName,
			Email:           u.Email,
			IsPlatformAdmin: u.IsPlatformAdmin,
		},
		ChurchID: u.ChurchID,
	})
}

// writePage answers a list request in the shape the server is configured
// for: the paginated envelope, or a bare array in legacy mode.
func writePage[T any](s *Server, w http.ResponseWriter, r *http.Request, items []T) {
	if s.opts.LegacyLists {
		writeJSON(w, http.StatusOK, items)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	total := len(items)
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data": items[start:end],
		"meta": api.PageMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

func (s *Server) handleListFollowUps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	search := strings.ToLower(q.Get("search"))
	assignedToMe := q.Get("assignedToMe") == "true"
	c := requestClaims(r)

	s.mu.Lock()
	var matched []followups.Person
	for _, id := range s.followUpIDs {
		p := s.followUps[id].Person
		if status != "" && string(p.Status) != status {
			continue
		}
		if search != "" {
			name := strings.ToLower(p.FirstName + " " + p.LastName)
			if !strings.Contains(name, search) {
				continue
			}
		}
		if assignedToMe && p.AssignedMemberID != c.UserID {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.Unlock()

	writePage(s, w, r, matched)
}

func (s *Server) handleCreateFollowUp(w http.ResponseWriter, r *http.Request) {
	var input followups.PersonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	if input.FirstName == "" || input.LastName == "" {
		writeError(w, http.StatusBadRequest, "Nombre y apellido son obligatorios")
		return
	}

	status := input.Status
	if status == "" {
		status = followups.StatusVisitor
	}
	now := time.Now().UTC()
	d := followups.Detail{
		Person: followups.Person{
			ID:               uuid.NewString(),
			FirstName:        input.FirstName,
			LastName:         input.LastName,
			Email:            input.Email,
			Phone:            input.Phone,
			Status:           status,
			AssignedMemberID: input.AssignedMemberID,
			CreatedAt:        now,
		},
		UpdatedAt: now,
		ChurchID:  requestClaims(r).ChurchID,
	}

	s.mu.Lock()
	s.followUps[d.ID] = &d
	s.followUpIDs = append(s.followUpIDs, d.ID)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleGetFollowUp(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	d := s.followUps[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if d == nil {
		writeError(w, http.StatusNotFound, "Seguimiento no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateFollowUp(w http.ResponseWriter, r *http.Request) {
	var input followups.PersonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido")
		return
	}
	if input.FirstName == "" || input.LastName == "" {
		writeError(w, http.StatusBadRequest, "Nombre y apellido son obligatorios")
		return
	}

	s.mu.Lock()
	d := s.followUps[chi.URLParam(r, "id")]
	if d != nil {
		d.FirstName = input.FirstName
		d.LastName = input.LastName
		d.Email = input.Email
		d.Phone = input.Phone
		if input.Status != "" {
			d.Status = input.Status
		}
		d.AssignedMemberID = input.AssignedMemberID
		d.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()

	if d == nil {
		writeError(w, http.StatusNotFound, "Seguimiento no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	notes := append([]followups.Note(nil), s.notes[chi.URLParam(r, "id")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "id")
	var input followups.NoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Text == "" {
		writeError(w, http.StatusBadRequest, "La nota no puede estar vacía")
		return
	}

	noteType := input.Type
	if noteType == "" {
		noteType = followups.NoteInternal
	}
	n := followups.Note{
		ID:             uuid.NewString(),
		Type:           noteType,
		Text:           input.Text,
		AuthorPersonID: requestClaims(r).UserID,
		CreatedAt:      time.Now().UTC(),
	}

	s.mu.Lock()
	s.notes[personID] = append(s.notes[personID], n)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "id")
	noteID := chi.URLParam(r, "noteId")
	var input followups.NoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Text == "" {
		writeError(w, http.StatusBadRequest, "La nota no puede estar vacía")
		return
	}

	s.mu.Lock()
	var updated *followups.Note
	for i := range s.notes[personID] {
		if s.notes[personID][i].ID == noteID {
			s.notes[personID][i].Text = input.Text
			if input.Type != "" {
				s.notes[personID][i].Type = input.Type
			}
			updated = &s.notes[personID][i]
			break
		}
	}
	s.mu.Unlock()

	if updated == nil {
		writeError(w, http.StatusNotFound, "Nota no encontrada")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "id")
	noteID := chi.URLParam(r, "noteId")

	s.mu.Lock()
	found := false
	notes := s.notes[personID]
	for i, n := range notes {
		if n.ID == noteID {
			s.notes[personID] = append(notes[:i], notes[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "Nota no encontrada")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	var matched []members.Member
	for _, id := range s.memberIDs {
		rec := s.members[id]
		if status != "" && rec.MembershipStatus != status {
			continue
		}
		matched = append(matched, rec.Member)
	}
	s.mu.Unlock()

	writePage(s, w, r, matched)
}

func (s *Server) handleSearchMembers(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))

	s.mu.Lock()
	var matched []members.Member
	for _, id := range s.memberIDs {
		rec := s.members[id]
		name := strings.ToLower(rec.Person.FirstName + " " + rec.Person.LastName)
		if strings.Contains(name, query) {
			matched = append(matched, rec.Member)
		}
	}
	s.mu.Unlock()

	// Search always answers a bare array; the client truncates it.
	writeJSON(w, http.StatusOK, matched)
}

func (s *Server) handlePatchMember(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		writeError(w, http.StatusBadRequest, "Estado inválido")
		return
	}

	s.mu.Lock()
	rec := s.members[chi.URLParam(r, "id")]
	if rec != nil {
		rec.MembershipStatus = body.Status
	}
	s.mu.Unlock()

	if rec == nil {
		writeError(w, http.StatusNotFound, "Miembro no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, rec.Member)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	rec := s.members[id]
	if rec != nil && rec.Refs > 0 {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "tiene referencias activas")
		return
	}
	if rec != nil {
		delete(s.members, id)
		for i, mid := range s.memberIDs {
			if mid == id {
				s.memberIDs = append(s.memberIDs[:i], s.memberIDs[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if rec == nil {
		writeError(w, http.StatusNotFound, "Miembro no encontrado")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFamilies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	fams := append([]families.Family(nil), s.families...)
	s.mu.Unlock()
	writePage(s, w, r, fams)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	g := s.groups[chi.URLParam(r, "id")]
	s.mu.Unlock()
	if g == nil {
		writeError(w, http.StatusNotFound, "Grupo no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	s.mu.Lock()
	g := s.groups[groupID]
	rec := s.members[memberID]
	if g == nil || rec == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Grupo o miembro no encontrado")
		return
	}
	for _, gm := range g.Members {
		if gm.ID == memberID {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "El miembro ya pertenece al grupo")
			return
		}
	}
	g.Members = append(g.Members, groups.GroupMember{ID: memberID, Person: rec.Person})
	rec.Refs++
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleDisenroll(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	s.mu.Lock()
	g := s.groups[groupID]
	if g == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Grupo no encontrado")
		return
	}
	found := false
	for i, gm := range g.Members {
		if gm.ID == memberID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			found = true
			break
		}
	}
	if found {
		if rec := s.members[memberID]; rec != nil && rec.Refs > 0 {
			rec.Refs--
		}
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "El miembro no pertenece al grupo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
