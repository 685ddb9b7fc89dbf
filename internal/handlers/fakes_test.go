package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/trailback/backend/internal/repositories"
	"github.com/trailback/backend/internal/validators"
	"github.com/trailback/backend/pkg/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProfiles struct {
	mu   sync.Mutex
	rows map[string]models.Profile
}

func (f *fakeProfiles) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) ListProfiles(_ context.Context, search, excludeID string) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Profile
	for _, p := range f.rows {
		if p.ID == excludeID {
			continue
		}
		if search != "" && (p.Username == nil || !strings.Contains(strings.ToLower(*p.Username), strings.ToLower(search))) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProfiles) UpsertProfile(_ context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.rows[p.ID]; ok {
		existing.Email = p.Email
		f.rows[p.ID] = existing
		return nil
	}
	f.rows[p.ID] = *p
	return nil
}

func (f *fakeProfiles) UpdateProfile(_ context.Context, id string, changes map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for k, v := range changes {
		s := v.(string)
		switch k {
		case "full_name":
			p.FullName = &s
		case "username":
			p.Username = &s
		case "avatar_url":
			p.AvatarURL = &s
		}
	}
	f.rows[id] = p
	return nil
}

type fakeFriendships struct {
	mu   sync.Mutex
	rows []models.Friendship
}

func (f *fakeFriendships) ListForUser(_ context.Context, userID string) ([]models.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Friendship
	for _, r := range f.rows {
		if r.Touches(userID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFriendships) ListBetween(_ context.Context, a, b string) ([]models.Friendship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Friendship
	for _, r := range f.rows {
		if (r.UserID == a && r.FriendID == b) || (r.UserID == b && r.FriendID == a) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFriendships) CreateRequest(_ context.Context, row *models.Friendship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.UserID == row.UserID && r.FriendID == row.FriendID {
			return repositories.ErrAlreadyExists
		}
	}
	row.ID = uint(len(f.rows) + 1)
	row.Status = models.FriendshipPending
	f.rows = append(f.rows, *row)
	return nil
}

func (f *fakeFriendships) AcceptRequest(_ context.Context, senderID, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.UserID == senderID && r.FriendID == recipientID && r.Status == models.FriendshipPending {
			f.rows[i].Status = models.FriendshipAccepted
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeFriendships) DeleteBetween(_ context.Context, a, b string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.Friendship
	for _, r := range f.rows {
		if (r.UserID == a && r.FriendID == b) || (r.UserID == b && r.FriendID == a) {
			continue
		}
		kept = append(kept, r)
	}
	removed := int64(len(f.rows) - len(kept))
	f.rows = kept
	return removed, nil
}

type fakeShares struct {
	mu   sync.Mutex
	rows []models.MemoryShare
}

func (f *fakeShares) CreateShare(_ context.Context, s *models.MemoryShare) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.MemoryID == s.MemoryID && r.SharedWith == s.SharedWith && r.SharedBy == s.SharedBy {
			return repositories.ErrAlreadyExists
		}
	}
	s.SharedAt = time.Now()
	f.rows = append(f.rows, *s)
	return nil
}

func (f *fakeShares) ListByMemory(_ context.Context, memoryID string) ([]models.MemoryShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MemoryShare
	for _, r := range f.rows {
		if r.MemoryID == memoryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeShares) ListSharedWith(_ context.Context, userID string) ([]models.MemoryShare, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MemoryShare
	for _, r := range f.rows {
		if r.SharedWith == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeShares) DeleteShare(_ context.Context, memoryID, sharedWith, sharedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.MemoryID == memoryID && r.SharedWith == sharedWith && r.SharedBy == sharedBy {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeShares) DeleteByMemory(_ context.Context, memoryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.MemoryShare
	for _, r := range f.rows {
		if r.MemoryID != memoryID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeMemories struct {
	mu   sync.Mutex
	rows map[string]models.Memory
}

func (f *fakeMemories) CreateMemory(_ context.Context, m *models.Memory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = primitive.NewObjectID()
	f.rows[m.ID.Hex()] = *m
	return nil
}

func (f *fakeMemories) GetMemoryByID(_ context.Context, id string) (*models.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &m, nil
}

func (f *fakeMemories) ListByCreator(_ context.Context, userID string) ([]models.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Memory
	for _, m := range f.rows {
		if m.CreatedBy == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemories) ListByIDs(_ context.Context, ids []string) ([]models.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Memory
	for _, id := range ids {
		if m, ok := f.rows[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemories) UpdateMemory(_ context.Context, m *models.Memory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[m.ID.Hex()]; !ok {
		return repositories.ErrNotFound
	}
	f.rows[m.ID.Hex()] = *m
	return nil
}

func (f *fakeMemories) DeleteMemory(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakePhotos struct {
	mu         sync.Mutex
	rows       map[string]models.Photo
	failCreate bool
}

func (f *fakePhotos) CreatePhoto(_ context.Context, p *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("mongo unavailable")
	}
	p.ID = primitive.NewObjectID()
	p.UploadedAt = time.Now()
	f.rows[p.ID.Hex()] = *p
	return nil
}

func (f *fakePhotos) GetPhotoByID(_ context.Context, id string) (*models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (f *fakePhotos) ListByMemory(_ context.Context, memoryID string) ([]models.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Photo
	for _, p := range f.rows {
		if p.MemoryID == memoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePhotos) DeletePhoto(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakePhotos) DeleteByMemory(_ context.Context, memoryID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, p := range f.rows {
		if p.MemoryID == memoryID {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

func (f *fakePhotos) CountByURL(_ context.Context, url string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.rows {
		if p.URL == url {
			n++
		}
	}
	return n, nil
}

func (f *fakePhotos) RegisteredURLs(context.Context) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := map[string]bool{}
	for _, p := range f.rows {
		urls[p.URL] = true
	}
	return urls, nil
}

// fakeObjects is an in-memory object store addressed by "https://objects.test/<bucket>/<key>".
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeObjects) Upload(_ context.Context, bucket, key, contentType string, data io.Reader) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	url := f.PublicURL(bucket, key)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[url] = b
	f.types[url] = contentType
	return url, nil
}

func (f *fakeObjects) Delete(_ context.Context, _ string, publicURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, publicURL)
	return nil
}

func (f *fakeObjects) PublicURL(bucket, key string) string {
	return "https://objects.test/" + bucket + "/" + key
}

func (f *fakeObjects) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[url]
	return ok
}

type recordedEvents struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordedEvents) Publish(_ context.Context, e models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Operation+":"+e.UserID)
	}
	return out
}

type stubVerifier map[string]*auth.Token

func (s stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := s[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("token rejected")
}

type testEnv struct {
	e           *echo.Echo
	profiles    *fakeProfiles
	friendships *fakeFriendships
	shares      *fakeShares
	memories    *fakeMemories
	photos      *fakePhotos
	objects     *fakeObjects
	events      *recordedEvents
	memoryH     *MemoryHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		e:           echo.New(),
		profiles:    &fakeProfiles{rows: map[string]models.Profile{}},
		friendships: &fakeFriendships{},
		shares:      &fakeShares{},
		memories:    &fakeMemories{rows: map[string]models.Memory{}},
		photos:      &fakePhotos{rows: map[string]models.Photo{}},
		objects:     &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}},
		events:      &recordedEvents{},
	}
	logger := zerolog.Nop()
	env.e.Validator = validators.NewValidator()
	env.e.HTTPErrorHandler = NewHTTPErrorHandler(logger)

	env.e.GET("/", Root)
	env.e.GET("/health", HealthCheck)
	env.e.GET("/favicon.ico", Favicon)

	g := env.e.Group("")
	env.memoryH = NewMemoryHandler(env.memories, env.photos, env.shares, env.objects, "photos", logger)
	env.memoryH.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	env.memoryH.RegisterMemoryRoutes(g)
	NewPhotoHandler(env.photos, env.memories, env.shares, env.objects, "photos", logger).RegisterPhotoRoutes(g)
	NewShareHandler(env.shares, env.memories, env.friendships, env.events, logger).RegisterShareRoutes(g)
	NewFriendshipHandler(env.friendships, env.profiles, env.events, logger).RegisterFriendshipRoutes(g)
	NewUserHandler(env.profiles, env.objects, "avatars", logger).RegisterProfileRoutes(g)
	NewAuthHandler(env.profiles, stubVerifier{
		"alice-token": {UID: "alice", Claims: map[string]interface{}{"email": "alice@example.com", "name": "Alice"}},
	}).RegisterAuthRoutes(env.e.Group("/auth"))

	for _, id := range []string{"alice", "bob", "carol"} {
		name := id
		env.profiles.rows[id] = models.Profile{ID: id, Email: id + "@example.com", Username: &name}
	}
	return env
}

func (env *testEnv) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) upload(t *testing.T, target string, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// seedMemory stores a memory owned by owner and returns its hex ID.
func (env *testEnv) seedMemory(owner, title string) string {
	m := &models.Memory{Title: title, Lat: 49.25, Lng: 19.93, CreatedBy: owner, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	_ = env.memories.CreateMemory(context.Background(), m)
	return m.ID.Hex()
}

func (env *testEnv) befriend(a, b string) {
	env.friendships.rows = append(env.friendships.rows, models.Friendship{UserID: a, FriendID: b, Status: models.FriendshipAccepted})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, rec, &body)
	return body.Detail
}
