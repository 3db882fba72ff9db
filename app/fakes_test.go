package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kingkey0101/mealmuse-api/app/models"
)

// fakeStore is an in-memory stand-in for the Postgres store. It implements
// every store interface the API consumes so handler tests run without a
// database.
type fakeStore struct {
	mu           sync.Mutex
	users        map[string]models.UserProfile
	recipes      map[string]models.Recipe
	favorites    map[string]models.Favorite
	interactions []models.AIInteraction

	insertRecipeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]models.UserProfile{},
		recipes:   map[string]models.Recipe{},
		favorites: map[string]models.Favorite{},
	}
}

func favKey(userID, recipeID string) string { return userID + "/" + recipeID }

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func (s *fakeStore) GetUser(_ context.Context, userID string) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) InsertUser(_ context.Context, p models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.UserID]; ok {
		return nil
	}
	s.users[p.UserID] = p
	return nil
}

func (s *fakeStore) UpdateUserTier(_ context.Context, userID string, tier models.Tier, limits models.Limits, stripeCustomerID string) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		return models.UserProfile{}, ErrNotFound
	}
	p.Tier = tier
	p.Limits = limits
	if stripeCustomerID != "" {
		p.Subscription.StripeCustomerID = stripeCustomerID
		p.Subscription.Status = models.SubscriptionActive
	}
	s.users[userID] = p
	return p, nil
}

func (s *fakeStore) IncrementUsage(_ context.Context, userID string, kind models.LimitKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	switch kind {
	case models.LimitRecipe:
		p.Usage.RecipesCreatedThisMonth++
	case models.LimitAIChat:
		p.Usage.AIChatsToday++
	case models.LimitRecipeGen:
		p.Usage.RecipeGensToday++
	default:
		return errors.New("unknown limit kind")
	}
	s.users[userID] = p
	return nil
}

func (s *fakeStore) ResetDailyUsage(_ context.Context, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	p.Usage.AIChatsToday = 0
	p.Usage.RecipeGensToday = 0
	p.Usage.LastResetDate = now
	s.users[userID] = p
	return nil
}

func (s *fakeStore) SetStripeCustomer(_ context.Context, userID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	p.Subscription.StripeCustomerID = customerID
	s.users[userID] = p
	return nil
}

func (s *fakeStore) UserIDByStripeCustomer(_ context.Context, customerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.users {
		if p.Subscription.StripeCustomerID == customerID {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (s *fakeStore) ListVisible(_ context.Context, userID string) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Recipe
	for _, r := range s.recipes {
		if r.IsSeeded || r.UserID == userID || r.Source == models.SourceSpoonacular {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) GetRecipe(_ context.Context, id string) (models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return models.Recipe{}, ErrNotFound
	}
	return r, nil
}

func (s *fakeStore) InsertRecipe(_ context.Context, r models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertRecipeErr != nil {
		return s.insertRecipeErr
	}
	s.recipes[r.ID] = r
	return nil
}

func (s *fakeStore) UpdateRecipe(_ context.Context, id string, upd models.RecipeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Title != nil {
		r.Title = *upd.Title
	}
	if upd.Cuisine != nil {
		r.Cuisine = *upd.Cuisine
	}
	if upd.Skill != nil {
		r.Skill = *upd.Skill
	}
	if upd.DietaryPreferences != nil {
		r.DietaryPreferences = *upd.DietaryPreferences
	}
	if upd.CookingTime != nil {
		r.CookingTime = *upd.CookingTime
	}
	if upd.Ingredients != nil {
		r.Ingredients = *upd.Ingredients
	}
	if upd.Steps != nil {
		r.Steps = *upd.Steps
	}
	if upd.Equipment != nil {
		r.Equipment = *upd.Equipment
	}
	if upd.Image != nil {
		r.Image = *upd.Image
	}
	s.recipes[id] = r
	return nil
}

func (s *fakeStore) DeleteRecipe(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

func (s *fakeStore) SearchRecipes(_ context.Context, userID string, f models.SearchFilters) ([]models.Recipe, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []models.Recipe
	for _, r := range s.recipes {
		if !(r.IsSeeded || r.UserID == userID || r.Source == models.SourceSpoonacular) {
			continue
		}
		if f.Skill != "" && !strings.EqualFold(string(r.Skill), f.Skill) {
			continue
		}
		if f.DietaryPreferences != "" && !containsString(r.DietaryPreferences, f.DietaryPreferences) {
			continue
		}
		if f.Cuisine != "" && !containsString(r.Cuisine, f.Cuisine) {
			continue
		}
		if f.CookingTime > 0 && r.CookingTime > f.CookingTime {
			continue
		}
		matched = append(matched, r)
	}
	// Same order the store query uses: cached_at DESC NULLS LAST, then
	// created_at DESC.
	sort.Slice(matched, func(i, j int) bool {
		ci, cj := matched[i].CachedAt, matched[j].CachedAt
		switch {
		case ci != nil && cj == nil:
			return true
		case ci == nil && cj != nil:
			return false
		case ci != nil && cj != nil && !ci.Equal(*cj):
			return ci.After(*cj)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)

	start := f.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *fakeStore) HasSpoonacularRecipe(_ context.Context, spoonacularID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recipes {
		if r.SpoonacularID == spoonacularID && spoonacularID != 0 {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) HasFavorite(_ context.Context, userID, recipeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[favKey(userID, recipeID)]
	return ok, nil
}

func (s *fakeStore) InsertFavorite(_ context.Context, fav models.Favorite) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := favKey(fav.UserID, fav.RecipeID)
	if _, ok := s.favorites[key]; ok {
		return false, nil
	}
	s.favorites[key] = fav
	return true, nil
}

func (s *fakeStore) DeleteFavorite(_ context.Context, userID, recipeID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := favKey(userID, recipeID)
	if _, ok := s.favorites[key]; !ok {
		return 0, nil
	}
	delete(s.favorites, key)
	return 1, nil
}

func (s *fakeStore) ListFavorites(_ context.Context, userID string) ([]models.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.FavoriteEntry{}
	for _, fav := range s.favorites {
		if fav.UserID != userID {
			continue
		}
		entry := models.FavoriteEntry{
			RecipeID:  fav.RecipeID,
			CreatedAt: fav.CreatedAt,
		}
		if r, ok := s.recipes[fav.RecipeID]; ok {
			entry.Recipe = r
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecipeID < out[j].RecipeID })
	return out, nil
}

func (s *fakeStore) InsertInteraction(_ context.Context, rec models.AIInteraction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, rec)
	return nil
}

func (s *fakeStore) usage(userID string) models.Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID].Usage
}

// fakeAI returns canned responses and records whether it was called.
type fakeAI struct {
	recipe  *models.GeneratedRecipe
	reply   string
	err     error
	calls   int
	modelID string
}

func (f *fakeAI) GenerateRecipe(context.Context, string) (*models.GeneratedRecipe, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.recipe, nil
}

func (f *fakeAI) Chat(context.Context, []models.ChatMessage) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeAI) Model() string {
	if f.modelID == "" {
		return "test-model"
	}
	return f.modelID
}

// fakeCatalog pages through a fixed result set, one batch per combination.
type fakeCatalog struct {
	results []SpoonacularRecipe
	err     error
	calls   int
}

func (f *fakeCatalog) SearchRecipes(context.Context, CatalogSearchOptions) ([]SpoonacularRecipe, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}
