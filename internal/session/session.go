package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/jengzang/climate-map-go/internal/activation"
	"github.com/jengzang/climate-map-go/internal/catalog"
	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/viewport"
)

// Session is one client's map state: its marker manager, chart
// coordinator, and the patch its requests accumulate. All handler access
// goes through WithLock, which serializes a session the way the host
// event loop serializes the embedded variant.
type Session struct {
	ID string

	mu       sync.Mutex
	lastSeen time.Time

	surface     *patchSurface
	Manager     *viewport.Manager
	Coordinator *activation.Coordinator
}

// WithLock runs fn with the session locked and returns the patch the
// call accumulated.
func (s *Session) WithLock(fn func()) Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	fn()
	return s.surface.take()
}

// popupContent is the default marker popup: name, id, and elevation,
// escaped for direct insertion.
func popupContent(st models.StationRecord) string {
	return fmt.Sprintf("<b>%s</b><br>%s<br>%.0f m",
		html.EscapeString(st.Name), html.EscapeString(st.ID), st.Elevation)
}

// Registry owns the live sessions and expires idle ones.
type Registry struct {
	catalog *catalog.Catalog
	loader  activation.SeriesLoader

	zoomThreshold int
	ttl           time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a session registry. Sessions idle longer than ttl
// are dropped by a background sweep.
func NewRegistry(cat *catalog.Catalog, loader activation.SeriesLoader, zoomThreshold int, ttl time.Duration) *Registry {
	r := &Registry{
		catalog:       cat,
		loader:        loader,
		zoomThreshold: zoomThreshold,
		ttl:           ttl,
		sessions:      make(map[string]*Session),
	}
	go r.sweep()
	return r
}

// Create builds a new session with a fresh manager and coordinator.
func (r *Registry) Create() *Session {
	surface := &patchSurface{}
	s := &Session{
		ID:       newSessionID(),
		lastSeen: time.Now(),
		surface:  surface,
	}
	s.Manager = viewport.NewManager(r.catalog, surface, popupContent,
		viewport.WithZoomThreshold(r.zoomThreshold),
		viewport.WithActivationHandler(func(stationID string) {
			surface.patch.Activated = stationID
		}),
	)
	s.Coordinator = activation.NewCoordinator(r.catalog, r.loader, surface)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id, if it exists.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete removes a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweep() {
	ticker := time.NewTicker(r.ttl)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-r.ttl)
		r.mu.Lock()
		for id, s := range r.sessions {
			s.mu.Lock()
			idle := s.lastSeen.Before(cutoff)
			s.mu.Unlock()
			if idle {
				delete(r.sessions, id)
			}
		}
		r.mu.Unlock()
	}
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
