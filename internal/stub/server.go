// Package stub is an in-memory Pastoreo backend implementing the client's
// wire contract. Tests and local development run against it; it keeps all
// state in maps behind one mutex so runs are deterministic.
package stub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pastoreohq/go-pastoreo/internal/families"
	"github.com/pastoreohq/go-pastoreo/internal/followups"
	"github.com/pastoreohq/go-pastoreo/internal/groups"
	"github.com/pastoreohq/go-pastoreo/internal/members"
)

// Options configures a stub server.
type Options struct {
	JWTSecret   string
	TokenExpiry time.Duration
	// LegacyLists makes list endpoints answer with bare arrays instead of
	// the paginated envelope, the backend's legacy mode.
	LegacyLists bool
	Logger      *slog.Logger
}

// User is a seeded login identity.
type User struct {
	ID              string
	Email           string
	FullName        string
	PasswordHash    []byte
	IsPlatformAdmin bool
	ChurchID        string
}

type memberRecord struct {
	members.Member
	// Refs counts records still pointing at the member; deletes 409 while
	// it is non-zero.
	Refs int
}

// Server holds the fake backend's state. All handler access goes through mu.
type Server struct {
	opts Options

	mu          sync.Mutex
	users       map[string]*User // by email
	followUps   map[string]*followups.Detail
	followUpIDs []string
	notes       map[string][]followups.Note // by person id
	members     map[string]*memberRecord
	memberIDs   []string
	families    []families.Family
	groups      map[string]*groups.Group
}

func New(opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "stub-secret"
	}
	if opts.TokenExpiry == 0 {
		opts.TokenExpiry = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		opts:      opts,
		users:     make(map[string]*User),
		followUps: make(map[string]*followups.Detail),
		notes:     make(map[string][]followups.Note),
		members:   make(map[string]*memberRecord),
		groups:    make(map[string]*groups.Group),
	}
}

// SeedUser registers a login identity and returns it.
func (s *Server) SeedUser(email, password, fullName, churchID string, platformAdmin bool) *User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("stub: hashing seed password: " + err.Error())
	}
	u := &User{
		ID:              uuid.NewString(),
		Email:           email,
		FullName:        fullName,
		PasswordHash:    hash,
		IsPlatformAdmin: platformAdmin,
		ChurchID:        churchID,
	}
	s.mu.Lock()
	s.users[email] = u
	s.mu.Unlock()
	return u
}

// SeedFollowUp inserts a follow-up person and returns the stored record.
func (s *Server) SeedFollowUp(p followups.Person) followups.Detail {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	d := followups.Detail{Person: p, UpdatedAt: p.CreatedAt, ChurchID: "stub-church"}
	s.mu.Lock()
	s.followUps[p.ID] = &d
	s.followUpIDs = append(s.followUpIDs, p.ID)
	s.mu.Unlock()
	return d
}

// SeedNote attaches a note to a follow-up person and returns it.
func (s *Server) SeedNote(personID string, n followups.Note) followups.Note {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.notes[personID] = append(s.notes[personID], n)
	s.mu.Unlock()
	return n
}

// SeedMember inserts a roster member; refs > 0 makes deletion conflict.
func (s *Server) SeedMember(m members.Member, refs int) members.Member {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.MembershipStatus == "" {
		m.MembershipStatus = members.StatusActive
	}
	s.mu.Lock()
	s.members[m.ID] = &memberRecord{Member: m, Refs: refs}
	s.memberIDs = append(s.memberIDs, m.ID)
	s.mu.Unlock()
	return m
}

// SeedFamily appends a family to the roster.
func (s *Server) SeedFamily(f families.Family) families.Family {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.families = append(s.families, f)
	s.mu.Unlock()
	return f
}

// SeedGroup inserts a group with its current membership.
func (s *Server) SeedGroup(g groups.Group) groups.Group {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.groups[g.ID] = &g
	s.mu.Unlock()
	return g
}
