package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kingkey0101/mealmuse-api/app/config"
	"github.com/kingkey0101/mealmuse-api/app/models"
	"github.com/kingkey0101/mealmuse-api/auth"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var errTestAI = errors.New("model unavailable")

func newTestAPI(store *fakeStore, ai *fakeAI) *API {
	if ai == nil {
		ai = &fakeAI{}
	}
	return &API{
		cfg:          &config.Config{},
		users:        store,
		recipes:      store,
		favorites:    store,
		interactions: store,
		ai:           ai,
		catalog:      &fakeCatalog{},
		now:          func() time.Time { return testNow },
	}
}

// newTestRouter registers the API routes behind a middleware that injects the
// given caller identity, standing in for the real bearer token verification.
func newTestRouter(api *API, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			ctx := auth.WithClaims(c.Request.Context(), &auth.Claims{UserID: userID})
			c.Request = c.Request.WithContext(ctx)
		}
	})

	r.GET("/recipes", api.ListRecipes)
	r.GET("/recipes/search", api.SearchRecipes)
	r.GET("/recipes/:id", api.GetRecipeByID)
	r.POST("/recipes", api.CreateRecipe)
	r.PUT("/recipes/:id", api.UpdateRecipe)
	r.DELETE("/recipes/:id", api.DeleteRecipe)
	r.POST("/recipes/generate", api.GenerateRecipe)
	r.POST("/chat", api.ChatWithChef)
	r.GET("/favorites", api.ListFavorites)
	r.GET("/favorites/:recipeId", api.CheckFavorite)
	r.POST("/favorites", api.AddFavorite)
	r.DELETE("/favorites/:recipeId", api.RemoveFavorite)
	r.GET("/me", api.Me)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return out
}

func seedUser(store *fakeStore, userID string, tier models.Tier, usage models.Usage) {
	store.users[userID] = models.UserProfile{
		UserID:    userID,
		Tier:      tier,
		Limits:    models.LimitsForTier(tier),
		Usage:     usage,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func TestCreateRecipeQuota(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
	r := newTestRouter(newTestAPI(store, nil), "u1")

	for i := 0; i < models.FreeRecipesPerMonth; i++ {
		w := doRequest(t, r, http.MethodPost, "/recipes", `{"title":"Pasta","skill":"beginner"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d: got status %d, want %d (body %s)", i+1, w.Code, http.StatusCreated, w.Body.String())
		}
	}

	w := doRequest(t, r, http.MethodPost, "/recipes", `{"title":"One too many"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusForbidden)
	}
	body := decodeBody(t, w)
	want := "Monthly recipe limit reached. Upgrade to premium for unlimited recipes."
	if body["error"] != want {
		t.Errorf("got error %q, want %q", body["error"], want)
	}
	if got := store.usage("u1").RecipesCreatedThisMonth; got != models.FreeRecipesPerMonth {
		t.Errorf("got %d recipes counted, want %d", got, models.FreeRecipesPerMonth)
	}
}

func TestCreateRecipePremiumUnlimited(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierPremium, models.Usage{RecipesCreatedThisMonth: 500, LastResetDate: testNow})
	r := newTestRouter(newTestAPI(store, nil), "u1")

	w := doRequest(t, r, http.MethodPost, "/recipes", `{"title":"Pasta"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
	r := newTestRouter(newTestAPI(store, nil), "u1")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"skill":"beginner"}`, "Title is required"},
		{"invalid skill", `{"title":"Pasta","skill":"wizard"}`, "Invalid skill level"},
		{"empty body", ``, "Request body is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/recipes", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
			}
			if body := decodeBody(t, w); body["error"] != tt.want {
				t.Errorf("got error %q, want %q", body["error"], tt.want)
			}
		})
	}
}

func TestGetRecipeIsPublic(t *testing.T) {
	store := newFakeStore()
	store.recipes["r1"] = models.Recipe{ID: "r1", Title: "Tacos", UserID: "someone-else"}
	// No caller identity injected at all.
	r := newTestRouter(newTestAPI(store, nil), "")

	w := doRequest(t, r, http.MethodGet, "/recipes/r1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if body := decodeBody(t, w); body["title"] != "Tacos" {
		t.Errorf("got title %q, want %q", body["title"], "Tacos")
	}

	w = doRequest(t, r, http.MethodGet, "/recipes/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeBody(t, w); body["error"] != "Recipe not found" {
		t.Errorf("got error %q, want %q", body["error"], "Recipe not found")
	}
}

func TestUpdateRecipeOwnership(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
	store.recipes["mine"] = models.Recipe{ID: "mine", Title: "Old", UserID: "u1"}
	store.recipes["theirs"] = models.Recipe{ID: "theirs", Title: "Not yours", UserID: "u2"}
	store.recipes["seeded"] = models.Recipe{ID: "seeded", Title: "Catalog", IsSeeded: true}
	r := newTestRouter(newTestAPI(store, nil), "u1")

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
		wantErr    string
	}{
		{"seeded recipe", "seeded", `{"title":"New"}`, http.StatusForbidden, "Cannot modify MealMuse recipe"},
		{"not owner", "theirs", `{"title":"New"}`, http.StatusForbidden, "You do not own this recipe"},
		{"missing recipe", "ghost", `{"title":"New"}`, http.StatusNotFound, "Recipe not found"},
		{"unknown field", "mine", `{"title":"New","isSeeded":true}`, http.StatusBadRequest, "Unrecognized field: isSeeded"},
		{"empty update", "mine", `{}`, http.StatusBadRequest, "No recognized fields to update"},
		{"bad skill", "mine", `{"skill":"wizard"}`, http.StatusBadRequest, "Invalid skill level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPut, "/recipes/"+tt.id, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if body := decodeBody(t, w); body["error"] != tt.wantErr {
				t.Errorf("got error %q, want %q", body["error"], tt.wantErr)
			}
		})
	}

	w := doRequest(t, r, http.MethodPut, "/recipes/mine", `{"title":"New","cookingTime":25}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	updated := store.recipes["mine"]
	if updated.Title != "New" || updated.CookingTime != 25 {
		t.Errorf("update not applied: title=%q cookingTime=%d", updated.Title, updated.CookingTime)
	}
}

func TestDeleteRecipe(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
	store.recipes["mine"] = models.Recipe{ID: "mine", UserID: "u1"}
	store.recipes["seeded"] = models.Recipe{ID: "seeded", IsSeeded: true}
	r := newTestRouter(newTestAPI(store, nil), "u1")

	w := doRequest(t, r, http.MethodDelete, "/recipes/seeded", "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusForbidden)
	}
	if body := decodeBody(t, w); body["error"] != "Cannot delete MealMuse recipe" {
		t.Errorf("got error %q, want %q", body["error"], "Cannot delete MealMuse recipe")
	}

	w = doRequest(t, r, http.MethodDelete, "/recipes/mine", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if _, ok := store.recipes["mine"]; ok {
		t.Error("recipe still present after delete")
	}
}

func TestGenerateRecipeQuotaAndFailure(t *testing.T) {
	generated := &models.GeneratedRecipe{
		Title:       "Garlic Noodles",
		Skill:       models.SkillBeginner,
		CookingTime: 20,
		Steps:       []string{"Boil noodles."},
	}

	t.Run("consumes quota only on success", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
		ai := &fakeAI{err: errTestAI}
		r := newTestRouter(newTestAPI(store, ai), "u1")

		w := doRequest(t, r, http.MethodPost, "/recipes/generate", `{"prompt":"noodles"}`)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if body := decodeBody(t, w); body["error"] != "Failed to generate recipe" {
			t.Errorf("got error %q, want %q", body["error"], "Failed to generate recipe")
		}
		if got := store.usage("u1").RecipeGensToday; got != 0 {
			t.Errorf("failed generation consumed quota: got %d, want 0", got)
		}
	})

	t.Run("saves recipe and interaction", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
		ai := &fakeAI{recipe: generated}
		r := newTestRouter(newTestAPI(store, ai), "u1")

		w := doRequest(t, r, http.MethodPost, "/recipes/generate", `{"prompt":"noodles"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusCreated, w.Body.String())
		}
		body := decodeBody(t, w)
		recipeID, _ := body["recipeId"].(string)
		if recipeID == "" {
			t.Fatal("response missing recipeId")
		}
		saved, ok := store.recipes[recipeID]
		if !ok {
			t.Fatal("generated recipe not persisted")
		}
		if saved.Source != models.SourceAIGenerated {
			t.Errorf("got source %q, want %q", saved.Source, models.SourceAIGenerated)
		}
		if len(store.interactions) != 1 {
			t.Fatalf("got %d interactions, want 1", len(store.interactions))
		}
		rec := store.interactions[0]
		if rec.Type != models.InteractionRecipeGeneration || !rec.SavedToRecipes || rec.RecipeID != recipeID {
			t.Errorf("interaction not linked to recipe: %+v", rec)
		}
		if got := store.usage("u1").RecipeGensToday; got != 1 {
			t.Errorf("got %d generations counted, want 1", got)
		}
	})

	t.Run("blocks at daily limit", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierFree, models.Usage{
			RecipeGensToday: models.FreeRecipeGensPerDay,
			LastResetDate:   testNow,
		})
		ai := &fakeAI{recipe: generated}
		r := newTestRouter(newTestAPI(store, ai), "u1")

		w := doRequest(t, r, http.MethodPost, "/recipes/generate", `{"prompt":"noodles"}`)
		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusForbidden)
		}
		if ai.calls != 0 {
			t.Errorf("blocked request still reached the model: %d calls", ai.calls)
		}
	})
}

func TestChatWithChef(t *testing.T) {
	history := `{"conversationHistory":[{"role":"user","content":"How do I substitute butter in baking?"}]}`

	t.Run("requires history", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
		r := newTestRouter(newTestAPI(store, &fakeAI{reply: "Use oil."}), "u1")

		w := doRequest(t, r, http.MethodPost, "/chat", `{"conversationHistory":[]}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
		}
		if body := decodeBody(t, w); body["error"] != "Missing or invalid conversationHistory" {
			t.Errorf("got error %q", body["error"])
		}
	})

	t.Run("derives topic and keywords", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
		r := newTestRouter(newTestAPI(store, &fakeAI{reply: "Use oil instead."}), "u1")

		w := doRequest(t, r, http.MethodPost, "/chat", history)
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
		}
		body := decodeBody(t, w)
		if body["response"] != "Use oil instead." {
			t.Errorf("got response %q", body["response"])
		}
		if body["topic"] != "ingredient_substitution" {
			t.Errorf("got topic %q, want %q", body["topic"], "ingredient_substitution")
		}
		if len(store.interactions) != 1 {
			t.Fatalf("got %d interactions, want 1", len(store.interactions))
		}
		if got := store.usage("u1").AIChatsToday; got != 1 {
			t.Errorf("got %d chats counted, want 1", got)
		}
	})

	t.Run("blocks at daily limit", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierFree, models.Usage{
			AIChatsToday:  models.FreeAIChatsPerDay,
			LastResetDate: testNow,
		})
		r := newTestRouter(newTestAPI(store, &fakeAI{reply: "hi"}), "u1")

		w := doRequest(t, r, http.MethodPost, "/chat", history)
		if w.Code != http.StatusForbidden {
			t.Fatalf("got status %d, want %d", w.Code, http.StatusForbidden)
		}
		want := "Daily AI chat limit reached. Upgrade to premium for unlimited chats."
		if body := decodeBody(t, w); body["error"] != want {
			t.Errorf("got error %q, want %q", body["error"], want)
		}
	})

	t.Run("stale counters roll over", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierFree, models.Usage{
			AIChatsToday:  models.FreeAIChatsPerDay,
			LastResetDate: testNow.AddDate(0, 0, -1),
		})
		r := newTestRouter(newTestAPI(store, &fakeAI{reply: "hi"}), "u1")

		w := doRequest(t, r, http.MethodPost, "/chat", history)
		if w.Code != http.StatusOK {
			t.Fatalf("yesterday's counters still blocking: status %d (body %s)", w.Code, w.Body.String())
		}
		usage := store.usage("u1")
		if usage.AIChatsToday != 1 {
			t.Errorf("got %d chats after reset, want 1", usage.AIChatsToday)
		}
		if !usage.LastResetDate.Equal(testNow) {
			t.Errorf("got lastResetDate %v, want %v", usage.LastResetDate, testNow)
		}
	})
}

func TestFavorites(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
	store.recipes["r1"] = models.Recipe{ID: "r1", Title: "Tacos"}
	r := newTestRouter(newTestAPI(store, nil), "u1")

	w := doRequest(t, r, http.MethodPost, "/favorites", `{"recipeId":"r1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusCreated)
	}
	if body := decodeBody(t, w); body["alreadyFavorited"] != false {
		t.Errorf("got alreadyFavorited %v, want false", body["alreadyFavorited"])
	}

	// Adding again is a no-op, not an error.
	w = doRequest(t, r, http.MethodPost, "/favorites", `{"recipeId":"r1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if body := decodeBody(t, w); body["alreadyFavorited"] != true {
		t.Errorf("got alreadyFavorited %v, want true", body["alreadyFavorited"])
	}

	w = doRequest(t, r, http.MethodGet, "/favorites/r1", "")
	if body := decodeBody(t, w); body["isFavorited"] != true {
		t.Errorf("got isFavorited %v, want true", body["isFavorited"])
	}

	w = doRequest(t, r, http.MethodGet, "/favorites", "")
	body := decodeBody(t, w)
	favorites, _ := body["favorites"].([]any)
	if len(favorites) != 1 {
		t.Fatalf("got %d favorites, want 1", len(favorites))
	}

	w = doRequest(t, r, http.MethodDelete, "/favorites/r1", "")
	if body := decodeBody(t, w); body["deletedCount"] != float64(1) {
		t.Errorf("got deletedCount %v, want 1", body["deletedCount"])
	}

	// Removing a bookmark that is already gone reports zero, not an error.
	w = doRequest(t, r, http.MethodDelete, "/favorites/r1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if body := decodeBody(t, w); body["deletedCount"] != float64(0) {
		t.Errorf("got deletedCount %v, want 0", body["deletedCount"])
	}
}

func TestSearchRecipesPagination(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
	for _, id := range []string{"a", "b", "c"} {
		store.recipes[id] = models.Recipe{ID: id, IsSeeded: true}
	}
	r := newTestRouter(newTestAPI(store, nil), "u1")

	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
		wantCount  int
	}{
		{"defaults", "", defaultSearchLimit, 0, 3},
		{"clamped limit", "?limit=5000", maxSearchLimit, 0, 3},
		{"explicit page", "?limit=2&offset=1", 2, 1, 2},
		{"offset past end", "?offset=10", defaultSearchLimit, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodGet, "/recipes/search"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("got status %d (body %s)", w.Code, w.Body.String())
			}
			var result models.SearchResult
			if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
				t.Fatalf("decode result: %v", err)
			}
			if result.Limit != tt.wantLimit {
				t.Errorf("got limit %d, want %d", result.Limit, tt.wantLimit)
			}
			if result.Offset != tt.wantOffset {
				t.Errorf("got offset %d, want %d", result.Offset, tt.wantOffset)
			}
			if len(result.Recipes) != tt.wantCount {
				t.Errorf("got %d recipes, want %d", len(result.Recipes), tt.wantCount)
			}
			if result.Total != 3 {
				t.Errorf("got total %d, want 3", result.Total)
			}
		})
	}
}

func TestSearchRecipesFilterAndOrdering(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})

	cachedAt := func(hoursAgo int) *time.Time {
		t := testNow.Add(-time.Duration(hoursAgo) * time.Hour)
		return &t
	}
	store.recipes["old"] = models.Recipe{
		ID: "old", IsSeeded: true, Skill: models.SkillBeginner,
		Cuisine: []string{"Italian"}, DietaryPreferences: []string{"vegan"},
		CachedAt: cachedAt(48),
	}
	store.recipes["newest"] = models.Recipe{
		ID: "newest", IsSeeded: true, Skill: models.SkillBeginner,
		Cuisine: []string{"Thai"},
		CachedAt: cachedAt(1),
	}
	store.recipes["middle"] = models.Recipe{
		ID: "middle", IsSeeded: true, Skill: models.SkillBeginner,
		Cuisine: []string{"Italian"},
		CachedAt: cachedAt(24),
	}
	store.recipes["advanced"] = models.Recipe{
		ID: "advanced", IsSeeded: true, Skill: models.SkillAdvanced,
		CachedAt: cachedAt(0),
	}
	r := newTestRouter(newTestAPI(store, nil), "u1")

	search := func(t *testing.T, query string) models.SearchResult {
		t.Helper()
		w := doRequest(t, r, http.MethodGet, "/recipes/search"+query, "")
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d (body %s)", w.Code, w.Body.String())
		}
		var result models.SearchResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		return result
	}

	t.Run("first page is the most recently cached match", func(t *testing.T) {
		result := search(t, "?skill=beginner&limit=1")
		if result.Total != 3 {
			t.Errorf("got total %d, want 3", result.Total)
		}
		if len(result.Recipes) != 1 {
			t.Fatalf("got %d recipes, want 1", len(result.Recipes))
		}
		if result.Recipes[0].ID != "newest" {
			t.Errorf("got recipe %q, want the most recently cached %q", result.Recipes[0].ID, "newest")
		}
	})

	t.Run("full page keeps cache-recency order", func(t *testing.T) {
		result := search(t, "?skill=beginner")
		want := []string{"newest", "middle", "old"}
		if len(result.Recipes) != len(want) {
			t.Fatalf("got %d recipes, want %d", len(result.Recipes), len(want))
		}
		for i, id := range want {
			if result.Recipes[i].ID != id {
				t.Errorf("position %d: got %q, want %q", i, result.Recipes[i].ID, id)
			}
		}
	})

	t.Run("skill filter is case-insensitive", func(t *testing.T) {
		if result := search(t, "?skill=BEGINNER&limit=1"); result.Total != 3 {
			t.Errorf("got total %d, want 3", result.Total)
		}
	})

	t.Run("cuisine narrows by list membership", func(t *testing.T) {
		result := search(t, "?skill=beginner&cuisine=Italian")
		if result.Total != 2 {
			t.Errorf("got total %d, want 2", result.Total)
		}
		for _, rec := range result.Recipes {
			if rec.ID == "newest" {
				t.Error("Thai recipe matched an Italian cuisine filter")
			}
		}
	})

	t.Run("diet narrows by tag membership", func(t *testing.T) {
		result := search(t, "?diet=vegan")
		if result.Total != 1 || result.Recipes[0].ID != "old" {
			t.Errorf("got total %d recipes %v, want only the vegan recipe", result.Total, result.Recipes)
		}
	})
}

func TestListRecipesVisibility(t *testing.T) {
	store := newFakeStore()
	seedUser(store, "u1", models.TierFree, models.Usage{LastResetDate: testNow})
	store.recipes["own"] = models.Recipe{ID: "own", UserID: "u1", Source: models.SourceUser}
	store.recipes["foreign"] = models.Recipe{ID: "foreign", UserID: "u2", Source: models.SourceUser}
	store.recipes["catalog"] = models.Recipe{ID: "catalog", IsSeeded: true, Source: models.SourceSpoonacular}
	r := newTestRouter(newTestAPI(store, nil), "u1")

	w := doRequest(t, r, http.MethodGet, "/recipes", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	var recipes []models.Recipe
	if err := json.Unmarshal(w.Body.Bytes(), &recipes); err != nil {
		t.Fatalf("decode recipes: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("got %d recipes, want 2", len(recipes))
	}
	for _, rec := range recipes {
		if rec.ID == "foreign" {
			t.Error("another user's private recipe is visible")
		}
	}
}

func TestMe(t *testing.T) {
	t.Run("free tier reports remaining", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierFree, models.Usage{
			RecipesCreatedThisMonth: 2,
			AIChatsToday:            1,
			LastResetDate:           testNow,
		})
		r := newTestRouter(newTestAPI(store, nil), "u1")

		w := doRequest(t, r, http.MethodGet, "/me", "")
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["tier"] != "free" {
			t.Errorf("got tier %v, want free", body["tier"])
		}
		remaining, _ := body["remaining"].(map[string]any)
		if remaining == nil {
			t.Fatal("free tier response missing remaining")
		}
		if remaining["recipesThisMonth"] != float64(models.FreeRecipesPerMonth-2) {
			t.Errorf("got remaining recipes %v, want %d", remaining["recipesThisMonth"], models.FreeRecipesPerMonth-2)
		}
		if remaining["aiChatsToday"] != float64(models.FreeAIChatsPerDay-1) {
			t.Errorf("got remaining chats %v, want %d", remaining["aiChatsToday"], models.FreeAIChatsPerDay-1)
		}
	})

	t.Run("premium has no limits", func(t *testing.T) {
		store := newFakeStore()
		seedUser(store, "u1", models.TierPremium, models.Usage{LastResetDate: testNow})
		r := newTestRouter(newTestAPI(store, nil), "u1")

		w := doRequest(t, r, http.MethodGet, "/me", "")
		body := decodeBody(t, w)
		if body["limits"] != nil || body["remaining"] != nil {
			t.Errorf("premium response carries limits=%v remaining=%v", body["limits"], body["remaining"])
		}
	})

	t.Run("first access creates a free profile", func(t *testing.T) {
		store := newFakeStore()
		r := newTestRouter(newTestAPI(store, nil), "brand-new")

		w := doRequest(t, r, http.MethodGet, "/me", "")
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d", w.Code)
		}
		if body := decodeBody(t, w); body["tier"] != "free" {
			t.Errorf("got tier %v, want free", body["tier"])
		}
		if _, ok := store.users["brand-new"]; !ok {
			t.Error("profile was not persisted")
		}
	})
}

func TestUnauthenticatedRejected(t *testing.T) {
	store := newFakeStore()
	r := newTestRouter(newTestAPI(store, nil), "")

	for _, route := range []struct {
		method, target string
	}{
		{http.MethodGet, "/recipes"},
		{http.MethodPost, "/recipes"},
		{http.MethodGet, "/favorites"},
		{http.MethodGet, "/me"},
	} {
		w := doRequest(t, r, route.method, route.target, `{"title":"x"}`)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got status %d, want %d", route.method, route.target, w.Code, http.StatusUnauthorized)
		}
	}
}
