package towerapi_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

const (
	validEmail    = "a"
	validPassword = "right"
	issuedToken   = "tok123"
)

// recordedRequest captures what the fake backend saw for one request.
type recordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	RequestID     string
	CacheControl  string
}

// fakeBackend is an in-memory implementation of the tower inventory REST API.
// Like the real backend it answers update, relocate and dismantle with the
// tower row alone, without its providers.
type fakeBackend struct {
	t *testing.T

	// formOnly reads tower payloads from form fields only, ignoring JSON.
	formOnly bool

	mu         sync.Mutex
	password   string
	nextID     uint
	towers     map[uint]model.Tower
	providers  map[uint]model.Provider
	blankspots map[uint]model.BlankspotArea
	events     map[uint][]model.TowerEvent
	requests   []recordedRequest
	photos     map[uint][]byte
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()

	b := &fakeBackend{
		t:          t,
		password:   validPassword,
		nextID:     1,
		towers:     map[uint]model.Tower{},
		providers:  map[uint]model.Provider{},
		blankspots: map[uint]model.BlankspotArea{},
		events:     map[uint][]model.TowerEvent{},
		photos:     map[uint][]byte{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", b.login)
	mux.HandleFunc("PUT /api/auth/change-password", b.requireAuth(b.changePassword))

	mux.HandleFunc("GET /api/towers", b.listTowers)
	mux.HandleFunc("GET /api/towers/{id}", b.getTower)
	mux.HandleFunc("POST /api/towers", b.requireAuth(b.createTower))
	mux.HandleFunc("PUT /api/towers/{id}", b.requireAuth(b.updateTower))
	mux.HandleFunc("DELETE /api/towers/{id}", b.requireAuth(b.deleteTower))
	mux.HandleFunc("PUT /api/towers/{id}/ownership", b.requireAuth(b.changeOwnership))
	mux.HandleFunc("PUT /api/towers/{id}/relocate", b.requireAuth(b.relocate))
	mux.HandleFunc("PUT /api/towers/{id}/dismantle", b.requireAuth(b.dismantle))
	mux.HandleFunc("GET /api/towers/{id}/history", b.requireAuth(b.history))

	mux.HandleFunc("GET /api/providers", b.listProviders)
	mux.HandleFunc("POST /api/providers", b.requireAuth(b.createProvider))
	mux.HandleFunc("PUT /api/providers/{id}", b.requireAuth(b.updateProvider))
	mux.HandleFunc("DELETE /api/providers/{id}", b.requireAuth(b.deleteProvider))

	mux.HandleFunc("GET /api/blankspots", b.listBlankspots)
	mux.HandleFunc("POST /api/blankspots", b.requireAuth(b.createBlankspot))
	mux.HandleFunc("PUT /api/blankspots/{id}", b.requireAuth(b.updateBlankspot))
	mux.HandleFunc("DELETE /api/blankspots/{id}", b.requireAuth(b.deleteBlankspot))

	recording := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
			CacheControl:  r.Header.Get("Cache-Control"),
		})
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	})

	server := httptest.NewServer(recording)
	t.Cleanup(server.Close)

	return b, server
}

func (b *fakeBackend) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func (b *fakeBackend) lastRequest() recordedRequest {
	reqs := b.recorded()
	if len(reqs) == 0 {
		b.t.Fatal("no requests recorded")
	}
	return reqs[len(reqs)-1]
}

// seedTower stores a tower directly, bypassing the API.
func (b *fakeBackend) seedTower(tower model.Tower) model.Tower {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tower.ID == 0 {
		tower.ID = b.allocID()
	} else if tower.ID >= b.nextID {
		b.nextID = tower.ID + 1
	}
	if tower.Status == "" {
		tower.Status = model.TowerStatusActive
	}
	b.towers[tower.ID] = tower
	return tower
}

func (b *fakeBackend) seedProvider(provider model.Provider) model.Provider {
	b.mu.Lock()
	defer b.mu.Unlock()
	provider.ID = b.allocID()
	b.providers[provider.ID] = provider
	return provider
}

func (b *fakeBackend) allocID() uint {
	id := b.nextID
	b.nextID++
	return id
}

// --- response helpers ---

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	state := "success"
	if status >= 400 {
		state = "error"
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"status": state, "message": message, "data": data})
}

func (b *fakeBackend) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+issuedToken {
			writeEnvelope(w, http.StatusUnauthorized, "Authorization header required", nil)
			return
		}
		next(w, r)
	}
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return uint(id), err == nil
}

// --- auth ---

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	ok := creds.Email == validEmail && creds.Password == b.password
	b.mu.Unlock()
	if !ok {
		writeEnvelope(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "Login successful", map[string]string{"token": issuedToken})
}

func (b *fakeBackend) changePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if body.CurrentPassword != b.password {
		writeEnvelope(w, http.StatusUnauthorized, "Invalid current password", nil)
		return
	}
	b.password = body.NewPassword
	writeEnvelope(w, http.StatusOK, "Password updated successfully", nil)
}

// --- towers ---

func (b *fakeBackend) listTowers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Tower, 0, len(b.towers))
	for id := uint(1); id < b.nextID; id++ {
		if tower, ok := b.towers[id]; ok {
			out = append(out, tower)
		}
	}
	writeEnvelope(w, http.StatusOK, "Towers fetched successfully", out)
}

func (b *fakeBackend) getTower(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	tower, ok := b.towers[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Tower not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "Tower fetched successfully", tower)
}

// decodeTowerInput accepts the JSON or multipart encodings of a tower payload.
func (b *fakeBackend) decodeTowerInput(r *http.Request) (model.TowerInput, []byte, error) {
	var in model.TowerInput
	if isMultipart(r) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			return in, nil, err
		}
		in.Latitude, _ = strconv.ParseFloat(r.FormValue("latitude"), 64)
		in.Longitude, _ = strconv.ParseFloat(r.FormValue("longitude"), 64)
		in.Tinggi, _ = strconv.ParseFloat(r.FormValue("tinggi"), 64)
		in.Kelurahan = r.FormValue("kelurahan")
		in.Kecamatan = r.FormValue("kecamatan")
		in.Address = r.FormValue("address")
		in.Tipe = r.FormValue("tipe")
		for _, v := range r.MultipartForm.Value["provider_ids"] {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return in, nil, err
			}
			in.ProviderIDs = append(in.ProviderIDs, uint(id))
		}
		var photo []byte
		if files := r.MultipartForm.File["photo"]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				return in, nil, err
			}
			defer f.Close()
			if photo, err = io.ReadAll(f); err != nil {
				return in, nil, err
			}
		}
		return in, photo, nil
	}
	if b.formOnly {
		return in, nil, nil
	}
	err := json.NewDecoder(r.Body).Decode(&in)
	return in, nil, err
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func rowOnly(t model.Tower) model.Tower {
	t.Providers = nil
	return t
}

func (b *fakeBackend) providersByID(ids []uint) []model.Provider {
	var out []model.Provider
	for _, id := range ids {
		if p, ok := b.providers[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (b *fakeBackend) appendEvent(towerID uint, eventType model.TowerEventType, description string) {
	b.events[towerID] = append([]model.TowerEvent{{
		ID:          uint(len(b.events[towerID]) + 1),
		TowerID:     towerID,
		EventType:   eventType,
		Timestamp:   time.Now().UTC(),
		Description: description,
		UserID:      1,
	}}, b.events[towerID]...)
}

func (b *fakeBackend) createTower(w http.ResponseWriter, r *http.Request) {
	if b.formOnly && !isMultipart(r) {
		writeEnvelope(w, http.StatusBadRequest, "Invalid latitude format", nil)
		return
	}
	in, photo, err := b.decodeTowerInput(r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Invalid tower payload", nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	tower := model.Tower{
		ID:        b.allocID(),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Kelurahan: in.Kelurahan,
		Kecamatan: in.Kecamatan,
		Address:   in.Address,
		Tinggi:    in.Tinggi,
		Tipe:      in.Tipe,
		Status:    model.TowerStatusActive,
		Providers: b.providersByID(in.ProviderIDs),
	}
	if photo != nil {
		b.photos[tower.ID] = photo
		tower.PhotoURL = fmt.Sprintf("/uploads/%d.webp", tower.ID)
	}
	b.towers[tower.ID] = tower
	b.appendEvent(tower.ID, model.TowerEventCreated, "Tower initially created.")
	writeEnvelope(w, http.StatusCreated, "Tower created successfully", tower)
}

func (b *fakeBackend) updateTower(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	in, photo, err := b.decodeTowerInput(r)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Invalid tower payload", nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	tower, ok := b.towers[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Tower not found", nil)
		return
	}
	tower.Kelurahan = in.Kelurahan
	tower.Kecamatan = in.Kecamatan
	tower.Address = in.Address
	tower.Tipe = in.Tipe
	if in.Tinggi != 0 {
		tower.Tinggi = in.Tinggi
	}
	if photo != nil {
		b.photos[id] = photo
		tower.PhotoURL = fmt.Sprintf("/uploads/%d-v2.webp", id)
	}
	b.towers[id] = tower
	b.appendEvent(id, model.TowerEventDetailsUpdate, "Tower details were updated.")
	writeEnvelope(w, http.StatusOK, "Tower updated successfully", rowOnly(tower))
}

func (b *fakeBackend) deleteTower(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.towers[id]; !ok {
		writeEnvelope(w, http.StatusNotFound, "Tower not found", nil)
		return
	}
	delete(b.towers, id)
	writeEnvelope(w, http.StatusOK, "Tower deleted successfully", nil)
}

func (b *fakeBackend) changeOwnership(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var body struct {
		NewProviderID uint `json:"new_provider_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewProviderID == 0 {
		writeEnvelope(w, http.StatusBadRequest, "new_provider_id is required", nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	tower, ok := b.towers[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Tower not found", nil)
		return
	}
	provider, ok := b.providers[body.NewProviderID]
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, "New provider not found", nil)
		return
	}
	// The response carries the tower as loaded before the association was
	// replaced, like the real backend; only a refetch shows the new owner.
	stale := tower
	tower.Providers = []model.Provider{provider}
	b.towers[id] = tower
	b.appendEvent(id, model.TowerEventOwnershipChange, "Ownership changed to "+provider.Name)
	writeEnvelope(w, http.StatusOK, "Tower ownership changed successfully", stale)
}

func (b *fakeBackend) relocate(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	tower, ok := b.towers[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Tower not found", nil)
		return
	}
	tower.Latitude, tower.Longitude = body.Latitude, body.Longitude
	b.towers[id] = tower
	b.appendEvent(id, model.TowerEventRelocation, "Tower relocated")
	writeEnvelope(w, http.StatusOK, "Tower relocated successfully", rowOnly(tower))
}

func (b *fakeBackend) dismantle(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	tower, ok := b.towers[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Tower not found", nil)
		return
	}
	tower.Status = model.TowerStatusDismantled
	b.towers[id] = tower
	b.appendEvent(id, model.TowerEventDismantled, "Tower status changed from active to dismantled")
	writeEnvelope(w, http.StatusOK, "Tower dismantled successfully", rowOnly(tower))
}

func (b *fakeBackend) history(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events[id]
	if events == nil {
		events = []model.TowerEvent{}
	}
	writeEnvelope(w, http.StatusOK, "Tower history fetched successfully", events)
}

// --- providers ---

func (b *fakeBackend) listProviders(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Provider, 0, len(b.providers))
	for id := uint(1); id < b.nextID; id++ {
		if p, ok := b.providers[id]; ok {
			out = append(out, p)
		}
	}
	writeEnvelope(w, http.StatusOK, "Providers fetched successfully", out)
}

func (b *fakeBackend) createProvider(w http.ResponseWriter, r *http.Request) {
	var in model.ProviderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" {
		writeEnvelope(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := model.Provider{ID: b.allocID(), Name: in.Name, Address: in.Address}
	b.providers[p.ID] = p
	writeEnvelope(w, http.StatusCreated, "Provider created successfully", p)
}

func (b *fakeBackend) updateProvider(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var in model.ProviderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.providers[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Provider not found", nil)
		return
	}
	p.Name, p.Address = in.Name, in.Address
	b.providers[id] = p
	writeEnvelope(w, http.StatusOK, "Provider updated successfully", p)
}

func (b *fakeBackend) deleteProvider(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.providers[id]; !ok {
		writeEnvelope(w, http.StatusNotFound, "Provider not found", nil)
		return
	}
	delete(b.providers, id)
	writeEnvelope(w, http.StatusOK, "Provider deleted successfully", nil)
}

// --- blankspots ---

func (b *fakeBackend) listBlankspots(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.BlankspotArea, 0, len(b.blankspots))
	for id := uint(1); id < b.nextID; id++ {
		if a, ok := b.blankspots[id]; ok {
			out = append(out, a)
		}
	}
	writeEnvelope(w, http.StatusOK, "Blankspot areas fetched successfully", out)
}

func (b *fakeBackend) createBlankspot(w http.ResponseWriter, r *http.Request) {
	var in model.BlankspotInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a := model.BlankspotArea{ID: b.allocID(), Name: in.Name, Kelurahan: in.Kelurahan, Coordinates: in.Coordinates, Type: in.Type, Color: in.Color}
	b.blankspots[a.ID] = a
	writeEnvelope(w, http.StatusCreated, "Blankspot area created successfully", a)
}

func (b *fakeBackend) updateBlankspot(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var in model.BlankspotInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.blankspots[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "Blankspot area not found", nil)
		return
	}
	a.Name, a.Kelurahan, a.Coordinates, a.Type, a.Color = in.Name, in.Kelurahan, in.Coordinates, in.Type, in.Color
	b.blankspots[id] = a
	writeEnvelope(w, http.StatusOK, "Blankspot area updated successfully", a)
}

func (b *fakeBackend) deleteBlankspot(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blankspots[id]; !ok {
		writeEnvelope(w, http.StatusNotFound, "Blankspot area not found", nil)
		return
	}
	delete(b.blankspots, id)
	writeEnvelope(w, http.StatusOK, "Blankspot area deleted successfully", nil)
}
