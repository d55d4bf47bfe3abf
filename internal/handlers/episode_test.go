package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"reelbe/internal/models"
	"reelbe/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===============================
// IN-MEMORY STORE
// ===============================

// fakeEpisodeStore mirrors the engine semantics in memory so handler
// tests run without Postgres.
type fakeEpisodeStore struct {
	episodes map[string]*models.Episode
	reels    map[string]*models.Reel
	unlocks  map[string]map[string]bool
	nextID   int
}

func newFakeEpisodeStore() *fakeEpisodeStore {
	return &fakeEpisodeStore{
		episodes: make(map[string]*models.Episode),
		reels:    make(map[string]*models.Reel),
		unlocks:  make(map[string]map[string]bool),
	}
}

func (s *fakeEpisodeStore) addReel(id, status string) {
	s.reels[id] = &models.Reel{ID: id, Title: "Reel " + id, Description: "desc", UserID: "creator1", Status: status}
}

func (s *fakeEpisodeStore) addEpisode(e models.Episode) *models.Episode {
	e.Normalize()
	s.episodes[e.ID] = &e
	return s.episodes[e.ID]
}

func (s *fakeEpisodeStore) respond(e *models.Episode) *models.EpisodeResponse {
	copied := *e
	copied.UnlockedBy = models.StringSlice{}
	for uid := range s.unlocks[e.ID] {
		copied.UnlockedBy = append(copied.UnlockedBy, uid)
	}
	return models.NewEpisodeResponse(&copied)
}

func (s *fakeEpisodeStore) CreateEpisode(_ context.Context, episode *models.Episode) (string, error) {
	if len(episode.ValidateForCreation()) > 0 {
		return "", services.ErrInvalidInput
	}
	if _, ok := s.reels[episode.ReelID]; !ok {
		return "", services.ErrReelNotFound
	}
	for _, existing := range s.episodes {
		if existing.ReelID == episode.ReelID && existing.EpisodeNumber == episode.EpisodeNumber {
			return "", services.ErrEpisodeNumberTaken
		}
	}

	s.nextID++
	episode.ID = fmt.Sprintf("ep%d", s.nextID)
	episode.IsLocked = !episode.IsFree
	episode.Status = models.EpisodeStatusPending
	s.addEpisode(*episode)
	return episode.ID, nil
}

func (s *fakeEpisodeStore) UnlockEpisode(_ context.Context, episodeID, userID string) (*models.UnlockResult, error) {
	episode, ok := s.episodes[episodeID]
	if !ok {
		return nil, services.ErrEpisodeNotFound
	}

	result := &models.UnlockResult{}
	if episode.IsFree {
		result.Free = true
	} else if s.unlocks[episodeID][userID] {
		result.AlreadyUnlocked = true
	} else {
		if s.unlocks[episodeID] == nil {
			s.unlocks[episodeID] = make(map[string]bool)
		}
		s.unlocks[episodeID][userID] = true
	}

	result.Episode = s.respond(episode)
	return result, nil
}

func (s *fakeEpisodeStore) HasAccess(_ context.Context, episodeID, userID string) (bool, error) {
	episode, ok := s.episodes[episodeID]
	if !ok {
		return false, services.ErrEpisodeNotFound
	}
	return episode.IsFree || s.unlocks[episodeID][userID], nil
}

func (s *fakeEpisodeStore) ToggleLike(_ context.Context, episodeID, userID string) (*models.ToggleResult, error) {
	return s.toggle(episodeID, userID, true)
}

func (s *fakeEpisodeStore) ToggleSave(_ context.Context, episodeID, userID string) (*models.ToggleResult, error) {
	return s.toggle(episodeID, userID, false)
}

func (s *fakeEpisodeStore) toggle(episodeID, userID string, likes bool) (*models.ToggleResult, error) {
	episode, ok := s.episodes[episodeID]
	if !ok {
		return nil, services.ErrEpisodeNotFound
	}

	target := &episode.Saves
	onAction, offAction := "saved", "unsaved"
	if likes {
		target = &episode.Likes
		onAction, offAction = "liked", "unliked"
	}

	action := onAction
	if (*target).Contains(userID) {
		action = offAction
		next := models.StringSlice{}
		for _, v := range *target {
			if v != userID {
				next = append(next, v)
			}
		}
		*target = next
	} else {
		*target = append(*target, userID)
	}

	return &models.ToggleResult{Action: action, Episode: s.respond(episode)}, nil
}

func (s *fakeEpisodeStore) HasLiked(_ context.Context, episodeID, userID string) (bool, error) {
	episode, ok := s.episodes[episodeID]
	if !ok {
		return false, services.ErrEpisodeNotFound
	}
	return episode.HasLiked(userID), nil
}

func (s *fakeEpisodeStore) HasSaved(_ context.Context, episodeID, userID string) (bool, error) {
	episode, ok := s.episodes[episodeID]
	if !ok {
		return false, services.ErrEpisodeNotFound
	}
	return episode.HasSaved(userID), nil
}

func (s *fakeEpisodeStore) GetEpisode(_ context.Context, episodeID string) (*models.EpisodeResponse, error) {
	episode, ok := s.episodes[episodeID]
	if !ok {
		return nil, services.ErrEpisodeNotFound
	}
	return s.respond(episode), nil
}

func (s *fakeEpisodeStore) GetReelEpisodes(_ context.Context, reelID string, approvedOnly bool) (*models.EpisodeListResponse, error) {
	reel, ok := s.reels[reelID]
	if !ok || (approvedOnly && !reel.IsApproved()) {
		return nil, services.ErrReelNotFound
	}

	episodes := []models.EpisodeResponse{}
	for _, episode := range s.episodes {
		if episode.ReelID != reelID {
			continue
		}
		if approvedOnly && episode.Status != models.EpisodeStatusApproved {
			continue
		}
		episodes = append(episodes, *s.respond(episode))
	}
	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].EpisodeNumber < episodes[j].EpisodeNumber
	})

	return &models.EpisodeListResponse{Count: len(episodes), Episodes: episodes}, nil
}

func (s *fakeEpisodeStore) GetSavedEpisodes(_ context.Context, userID string) (*models.EpisodeListResponse, error) {
	episodes := []models.EpisodeResponse{}
	for _, episode := range s.episodes {
		if episode.HasSaved(userID) {
			episodes = append(episodes, *s.respond(episode))
		}
	}
	return &models.EpisodeListResponse{Count: len(episodes), Episodes: episodes}, nil
}

func (s *fakeEpisodeStore) GetAllEpisodes(_ context.Context, limit, offset int) ([]models.EpisodeResponse, error) {
	episodes := []models.EpisodeResponse{}
	for _, episode := range s.episodes {
		episodes = append(episodes, *s.respond(episode))
	}
	sort.Slice(episodes, func(i, j int) bool { return episodes[i].ID < episodes[j].ID })
	if offset >= len(episodes) {
		return []models.EpisodeResponse{}, nil
	}
	episodes = episodes[offset:]
	if len(episodes) > limit {
		episodes = episodes[:limit]
	}
	return episodes, nil
}

func (s *fakeEpisodeStore) UpdateEpisode(_ context.Context, episodeID string, req *models.UpdateEpisodeRequest, newVideoURL string) error {
	episode, ok := s.episodes[episodeID]
	if !ok {
		return services.ErrEpisodeNotFound
	}

	if req.EpisodeName != nil {
		episode.EpisodeName = *req.EpisodeName
	}
	if req.Description != nil {
		episode.Description = *req.Description
	}
	if req.Caption != nil {
		episode.Caption = *req.Caption
	}
	if req.IsFree != nil {
		episode.IsFree = *req.IsFree
		episode.IsLocked = !*req.IsFree
	}
	if newVideoURL != "" {
		episode.VideoURL = newVideoURL
	}
	return nil
}

func (s *fakeEpisodeStore) UpdateEpisodeStatus(_ context.Context, episodeID, status string) error {
	if !models.IsValidEpisodeStatus(status) {
		return services.ErrInvalidStatus
	}
	episode, ok := s.episodes[episodeID]
	if !ok {
		return services.ErrEpisodeNotFound
	}
	episode.Status = status
	return nil
}

func (s *fakeEpisodeStore) DeleteEpisode(_ context.Context, episodeID string) error {
	if _, ok := s.episodes[episodeID]; !ok {
		return services.ErrEpisodeNotFound
	}
	delete(s.episodes, episodeID)
	delete(s.unlocks, episodeID)
	return nil
}

type fakeUploader struct {
	err     error
	lastKey string
}

func (u *fakeUploader) UploadEpisodeVideo(_ context.Context, _ multipart.File, filename, ownerID string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.lastKey = "reels/users/" + ownerID + "/episodes/" + filename
	return "https://media.test/" + u.lastKey, nil
}

// ===============================
// TEST ROUTER
// ===============================

func newEpisodeRouter(store EpisodeStore, uploader VideoUploader, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewEpisodeHandler(store, uploader)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
	})

	api := router.Group("/api/v1")
	api.GET("/reels/:reelId/episodes", handler.GetApprovedReelEpisodes)
	api.GET("/reels/:reelId/episodes/all", handler.GetReelEpisodes)
	api.POST("/reels/:reelId/episodes", handler.CreateEpisode)
	api.GET("/episodes/saved", handler.GetSavedEpisodes)
	api.GET("/episodes/:episodeId", handler.GetEpisode)
	api.PUT("/episodes/:episodeId", handler.UpdateEpisode)
	api.DELETE("/episodes/:episodeId", handler.DeleteEpisode)
	api.POST("/episodes/:episodeId/like", handler.ToggleLike)
	api.POST("/episodes/:episodeId/save", handler.ToggleSave)
	api.GET("/episodes/:episodeId/liked", handler.HasLiked)
	api.GET("/episodes/:episodeId/saved", handler.HasSaved)
	api.POST("/episodes/:episodeId/unlock", handler.UnlockEpisode)
	api.GET("/episodes/:episodeId/access", handler.HasAccess)
	api.POST("/episodes/:episodeId/status", handler.UpdateEpisodeStatus)
	api.GET("/admin/episodes", handler.GetAllEpisodes)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func episodeForm(t *testing.T, fields map[string]string, videoName string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if videoName != "" {
		part, err := writer.CreateFormFile("video", videoName)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake video bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func doForm(router *gin.Engine, method, path string, buf *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ===============================
// CREATION
// ===============================

func TestCreateEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusApproved)
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	buf, contentType := episodeForm(t, map[string]string{
		"episodeNumber": "1",
		"episodeName":   "Pilot",
		"description":   "The first episode",
	}, "pilot.mp4")

	w := doForm(router, http.MethodPost, "/api/v1/reels/reel1/episodes", buf, contentType)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	episodeID, ok := body["episodeId"].(string)
	require.True(t, ok)

	episode := store.episodes[episodeID]
	require.NotNil(t, episode)
	assert.Equal(t, "userA", episode.UserID)
	assert.Equal(t, models.EpisodeStatusPending, episode.Status)
	assert.False(t, episode.IsFree)
	assert.True(t, episode.IsLocked)
	assert.True(t, strings.HasPrefix(episode.VideoURL, "https://media.test/reels/users/userA/episodes/"))
}

func TestCreateEpisode_FreeEpisodeNotLocked(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusApproved)
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	buf, contentType := episodeForm(t, map[string]string{
		"episodeNumber": "1",
		"episodeName":   "Pilot",
		"description":   "The first episode",
		"isFree":        "true",
	}, "pilot.mp4")

	w := doForm(router, http.MethodPost, "/api/v1/reels/reel1/episodes", buf, contentType)
	require.Equal(t, http.StatusCreated, w.Code)

	episodeID := decodeBody(t, w)["episodeId"].(string)
	episode := store.episodes[episodeID]
	assert.True(t, episode.IsFree)
	assert.False(t, episode.IsLocked)
}

func TestCreateEpisode_DuplicateNumber(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusApproved)
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	fields := map[string]string{
		"episodeNumber": "3",
		"episodeName":   "Finale",
		"description":   "The last episode",
	}

	buf, contentType := episodeForm(t, fields, "finale.mp4")
	w := doForm(router, http.MethodPost, "/api/v1/reels/reel1/episodes", buf, contentType)
	require.Equal(t, http.StatusCreated, w.Code)

	buf, contentType = episodeForm(t, fields, "finale-v2.mp4")
	w = doForm(router, http.MethodPost, "/api/v1/reels/reel1/episodes", buf, contentType)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Episode number already exists for this reel", decodeBody(t, w)["error"])
}

func TestCreateEpisode_MissingVideo(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusApproved)
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	buf, contentType := episodeForm(t, map[string]string{
		"episodeNumber": "1",
		"episodeName":   "Pilot",
		"description":   "The first episode",
	}, "")

	w := doForm(router, http.MethodPost, "/api/v1/reels/reel1/episodes", buf, contentType)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Video is required", decodeBody(t, w)["error"])
}

func TestCreateEpisode_UnknownReel(t *testing.T) {
	store := newFakeEpisodeStore()
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	buf, contentType := episodeForm(t, map[string]string{
		"episodeNumber": "1",
		"episodeName":   "Pilot",
		"description":   "The first episode",
	}, "pilot.mp4")

	w := doForm(router, http.MethodPost, "/api/v1/reels/ghost/episodes", buf, contentType)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateEpisode_Unauthenticated(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusApproved)
	router := newEpisodeRouter(store, &fakeUploader{}, "")

	buf, contentType := episodeForm(t, map[string]string{
		"episodeNumber": "1",
		"episodeName":   "Pilot",
		"description":   "The first episode",
	}, "pilot.mp4")

	w := doForm(router, http.MethodPost, "/api/v1/reels/reel1/episodes", buf, contentType)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateEpisode_UploadFailure(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusApproved)
	router := newEpisodeRouter(store, &fakeUploader{err: services.ErrUploadFailed}, "userA")

	buf, contentType := episodeForm(t, map[string]string{
		"episodeNumber": "1",
		"episodeName":   "Pilot",
		"description":   "The first episode",
	}, "pilot.mp4")

	w := doForm(router, http.MethodPost, "/api/v1/reels/reel1/episodes", buf, contentType)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, store.episodes)
}

// ===============================
// ENGAGEMENT
// ===============================

func TestToggleLike_Sequence(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", ReelID: "reel1", IsFree: true})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "liked", decodeBody(t, w)["action"])
	assert.True(t, store.episodes["ep1"].HasLiked("userA"))

	w = doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unliked", decodeBody(t, w)["action"])
	assert.False(t, store.episodes["ep1"].HasLiked("userA"))
}

func TestToggleSave_Sequence(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", ReelID: "reel1", IsFree: true})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "saved", decodeBody(t, w)["action"])

	w = doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unsaved", decodeBody(t, w)["action"])
}

func TestToggleLike_ReturnsUpdatedCounts(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", ReelID: "reel1", Likes: models.StringSlice{"userB"}})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/like", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["likeCount"])
}

func TestToggleLike_UnknownEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodPost, "/api/v1/episodes/ghost/like", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHasLikedAndHasSaved(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{
		ID:    "ep1",
		Likes: models.StringSlice{"userA"},
		Saves: models.StringSlice{"userB"},
	})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodGet, "/api/v1/episodes/ep1/liked", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["hasLiked"])

	w = doJSON(router, http.MethodGet, "/api/v1/episodes/ep1/saved", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["hasSaved"])
}

// ===============================
// ACCESS & UNLOCK
// ===============================

func TestUnlockEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", IsFree: false})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/unlock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Episode unlocked successfully", decodeBody(t, w)["message"])

	w = doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/unlock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "You have already unlocked this episode", decodeBody(t, w)["message"])
}

func TestUnlockEpisode_FreeEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", IsFree: true})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/unlock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "This episode is already free to watch", decodeBody(t, w)["message"])
	assert.Empty(t, store.unlocks["ep1"])
}

func TestHasAccess_LockedEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", IsFree: false})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodGet, "/api/v1/episodes/ep1/access", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["hasAccess"])

	doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/unlock", nil)

	w = doJSON(router, http.MethodGet, "/api/v1/episodes/ep1/access", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["hasAccess"])
}

func TestHasAccess_FreeEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", IsFree: true})
	router := newEpisodeRouter(store, &fakeUploader{}, "userB")

	w := doJSON(router, http.MethodGet, "/api/v1/episodes/ep1/access", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["hasAccess"])
}

// ===============================
// QUERIES
// ===============================

func TestGetEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{
		ID:    "ep1",
		Likes: models.StringSlice{"userA", "userB"},
	})
	router := newEpisodeRouter(store, &fakeUploader{}, "")

	w := doJSON(router, http.MethodGet, "/api/v1/episodes/ep1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ep1", body["id"])
	assert.Equal(t, float64(2), body["likeCount"])
	assert.Equal(t, float64(0), body["saveCount"])
}

func TestGetEpisode_NotFound(t *testing.T) {
	store := newFakeEpisodeStore()
	router := newEpisodeRouter(store, &fakeUploader{}, "")

	w := doJSON(router, http.MethodGet, "/api/v1/episodes/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetApprovedReelEpisodes(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusApproved)
	store.addEpisode(models.Episode{ID: "ep1", ReelID: "reel1", EpisodeNumber: 2, Status: models.EpisodeStatusApproved})
	store.addEpisode(models.Episode{ID: "ep2", ReelID: "reel1", EpisodeNumber: 1, Status: models.EpisodeStatusApproved})
	store.addEpisode(models.Episode{ID: "ep3", ReelID: "reel1", EpisodeNumber: 3, Status: models.EpisodeStatusPending})
	router := newEpisodeRouter(store, &fakeUploader{}, "")

	w := doJSON(router, http.MethodGet, "/api/v1/reels/reel1/episodes", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list models.EpisodeListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 2, list.Count)
	assert.Equal(t, 1, list.Episodes[0].EpisodeNumber)
	assert.Equal(t, 2, list.Episodes[1].EpisodeNumber)
}

func TestGetApprovedReelEpisodes_PendingReel(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusPending)
	router := newEpisodeRouter(store, &fakeUploader{}, "")

	w := doJSON(router, http.MethodGet, "/api/v1/reels/reel1/episodes", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReelEpisodes_IncludesPending(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addReel("reel1", models.EpisodeStatusPending)
	store.addEpisode(models.Episode{ID: "ep1", ReelID: "reel1", EpisodeNumber: 1, Status: models.EpisodeStatusPending})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodGet, "/api/v1/reels/reel1/episodes/all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list models.EpisodeListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}

func TestGetSavedEpisodes(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", Saves: models.StringSlice{"userA"}})
	store.addEpisode(models.Episode{ID: "ep2", Saves: models.StringSlice{"userB"}})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	w := doJSON(router, http.MethodGet, "/api/v1/episodes/saved", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list models.EpisodeListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "ep1", list.Episodes[0].ID)
}

func TestGetAllEpisodes_Pagination(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1"})
	store.addEpisode(models.Episode{ID: "ep2"})
	store.addEpisode(models.Episode{ID: "ep3"})
	router := newEpisodeRouter(store, &fakeUploader{}, "admin1")

	w := doJSON(router, http.MethodGet, "/api/v1/admin/episodes?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var episodes []models.EpisodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &episodes))
	require.Len(t, episodes, 2)
	assert.Equal(t, "ep2", episodes[0].ID)
}

// ===============================
// LIFECYCLE
// ===============================

func TestUpdateEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", EpisodeName: "Old", IsFree: false, IsLocked: true})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	buf, contentType := episodeForm(t, map[string]string{
		"episodeName": "New name",
		"isFree":      "true",
	}, "")

	w := doForm(router, http.MethodPut, "/api/v1/episodes/ep1", buf, contentType)
	require.Equal(t, http.StatusOK, w.Code)

	episode := store.episodes["ep1"]
	assert.Equal(t, "New name", episode.EpisodeName)
	assert.True(t, episode.IsFree)
	assert.False(t, episode.IsLocked)
}

func TestUpdateEpisode_WithReplacementVideo(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", VideoURL: "https://media.test/old.mp4"})
	router := newEpisodeRouter(store, &fakeUploader{}, "userA")

	buf, contentType := episodeForm(t, map[string]string{}, "replacement.mp4")

	w := doForm(router, http.MethodPut, "/api/v1/episodes/ep1", buf, contentType)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, store.episodes["ep1"].VideoURL, "replacement.mp4")
}

func TestUpdateEpisodeStatus(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", Status: models.EpisodeStatusPending})
	router := newEpisodeRouter(store, &fakeUploader{}, "admin1")

	w := doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/status",
		models.UpdateEpisodeStatusRequest{Status: models.EpisodeStatusApproved})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.EpisodeStatusApproved, store.episodes["ep1"].Status)
}

func TestUpdateEpisodeStatus_InvalidStatus(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1", Status: models.EpisodeStatusPending})
	router := newEpisodeRouter(store, &fakeUploader{}, "admin1")

	w := doJSON(router, http.MethodPost, "/api/v1/episodes/ep1/status",
		models.UpdateEpisodeStatusRequest{Status: "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.EpisodeStatusPending, store.episodes["ep1"].Status)
}

func TestDeleteEpisode(t *testing.T) {
	store := newFakeEpisodeStore()
	store.addEpisode(models.Episode{ID: "ep1"})
	router := newEpisodeRouter(store, &fakeUploader{}, "admin1")

	w := doJSON(router, http.MethodDelete, "/api/v1/episodes/ep1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/episodes/ep1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEpisode_NotFound(t *testing.T) {
	store := newFakeEpisodeStore()
	router := newEpisodeRouter(store, &fakeUploader{}, "admin1")

	w := doJSON(router, http.MethodDelete, "/api/v1/episodes/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
