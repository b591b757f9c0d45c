package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/peteraglen/starter-api-client/service"
)

type ctxKey struct{}

// fakeAPI is an in-memory backend speaking the API's envelope format.
type fakeAPI struct {
	mu        sync.Mutex
	users     map[int64]service.User
	passwords map[string]string
	sessions  map[string]int64
	nextID    int64
	issued    int
	logouts   int
	langs     []string
	lastQuery url.Values
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:     map[int64]service.User{},
		passwords: map[string]string{},
		sessions:  map[string]int64{},
		nextID:    1,
	}
}

func (f *fakeAPI) addUser(name, email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := service.User{ID: f.nextID, Name: name, Email: email}
	f.nextID++
	f.users[u.ID] = u
	f.passwords[email] = password

	return u
}

func (f *fakeAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Use(f.recordLanguage)

	r.Post("/auth/login", f.login)
	r.Post("/auth/register", f.register)

	r.Group(func(r chi.Router) {
		r.Use(f.requireSession)

		r.Get("/auth/me", f.me)
		r.Post("/auth/logout", f.logout)
		r.Post("/auth/refresh", f.refresh)
		r.Get("/users", f.listUsers)
		r.Get("/users/{id}", f.getUser)
		r.Put("/users/{id}", f.updateUser)
		r.Delete("/users/{id}", f.deleteUser)
	})

	return r
}

func (f *fakeAPI) recordLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.langs = append(f.langs, r.Header.Get(service.LanguageHeader))
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

		f.mu.Lock()
		id, found := f.sessions[tok]
		f.mu.Unlock()

		if !ok || !found {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// issue must be called with f.mu held.
func (f *fakeAPI) issue(userID int64) service.AuthResponse {
	f.issued++
	tok := fmt.Sprintf("token-%d", f.issued)
	f.sessions[tok] = userID
	u := f.users[userID]

	return service.AuthResponse{Token: tok, RefreshToken: "refresh-" + tok, User: &u}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	pw, ok := f.passwords[in.Email]
	if !ok || pw != in.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	for id, u := range f.users {
		if u.Email == in.Email {
			writeData(w, http.StatusOK, f.issue(id))
			return
		}
	}

	writeError(w, http.StatusUnauthorized, "invalid credentials")
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, taken := f.passwords[in.Email]; taken {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	u := service.User{ID: f.nextID, Name: in.Name, Email: in.Email}
	f.nextID++
	f.users[u.ID] = u
	f.passwords[in.Email] = in.Password

	writeData(w, http.StatusCreated, f.issue(u.ID))
}

func (f *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	writeData(w, http.StatusOK, f.users[r.Context().Value(ctxKey{}).(int64)])
}

func (f *fakeAPI) logout(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	f.mu.Lock()
	delete(f.sessions, tok)
	f.logouts++
	f.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeAPI) refresh(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.sessions[tok]
	delete(f.sessions, tok)

	writeData(w, http.StatusOK, f.issue(id))
}

func (f *fakeAPI) listUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "pageSize", 10)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastQuery = r.URL.Query()

	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	data := []service.User{}
	for i := (page - 1) * size; i < len(ids) && i < page*size; i++ {
		data = append(data, f.users[ids[i]])
	}

	writeJSON(w, http.StatusOK, service.Page[service.User]{
		Data: data,
		Meta: service.PageMeta{
			Page:       page,
			PageSize:   size,
			Total:      len(ids),
			TotalPages: (len(ids) + size - 1) / size,
		},
	})
}

func (f *fakeAPI) getUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.userFromPath(r)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeData(w, http.StatusOK, u)
}

func (f *fakeAPI) updateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.userFromPath(r)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	f.users[u.ID] = u

	writeData(w, http.StatusOK, u)
}

func (f *fakeAPI) deleteUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.userFromPath(r)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	delete(f.users, u.ID)
	w.WriteHeader(http.StatusNoContent)
}

// userFromPath must be called with f.mu held.
func (f *fakeAPI) userFromPath(r *http.Request) (service.User, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return service.User{}, false
	}

	u, ok := f.users[id]
	return u, ok
}

func (f *fakeAPI) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *fakeAPI) logoutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}

func (f *fakeAPI) languages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.langs...)
}

func (f *fakeAPI) query() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func queryInt(r *http.Request, name string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"message": message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
