package app

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kingkey0101/mealmuse-api/app/models"
	"github.com/kingkey0101/mealmuse-api/auth"
)

func callerID(c *gin.Context) (string, bool) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok || claims.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return "", false
	}
	return claims.UserID, true
}

// ListRecipes returns every recipe visible to the caller.
func (a *API) ListRecipes(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	recipes, err := a.recipes.ListVisible(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list recipes failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// SearchRecipes runs the filtered, paginated catalog search.
func (a *API) SearchRecipes(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	filters := parseSearchFilters(c)
	recipes, total, err := a.recipes.SearchRecipes(c.Request.Context(), userID, filters)
	if err != nil {
		log.Printf("search recipes failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}

	c.JSON(http.StatusOK, models.SearchResult{
		Recipes: recipes,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	})
}

// parseSearchFilters reads the recognized query parameters and applies
// defaults and the hard page-size clamp. Unrecognized parameters are
// ignored, never forwarded to the store.
func parseSearchFilters(c *gin.Context) models.SearchFilters {
	f := models.SearchFilters{
		Skill:              c.Query("skill"),
		DietaryPreferences: c.Query("diet"),
		Cuisine:            c.Query("cuisine"),
		Limit:              defaultSearchLimit,
	}
	if t := c.Query("time"); t != "" {
		if v, err := strconv.Atoi(t); err == nil {
			f.CookingTime = v
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			f.Limit = v
		}
	}
	if f.Limit > maxSearchLimit {
		f.Limit = maxSearchLimit
	}
	if o := c.Query("offset"); o != "" {
		// Negative offsets are passed through; the store defines behavior.
		if v, err := strconv.Atoi(o); err == nil {
			f.Offset = v
		}
	}
	return f
}

// GetRecipeByID is a public read; no credential required.
func (a *API) GetRecipeByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe ID is required"})
		return
	}

	recipe, err := a.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		log.Printf("get recipe failed id=%s err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe persists a caller-owned recipe, gated by the monthly quota.
func (a *API) CreateRecipe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body is required"})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}
	if req.Skill != "" && !models.ValidSkill(req.Skill) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid skill level"})
		return
	}

	allowed, err := a.CheckLimit(c.Request.Context(), userID, models.LimitRecipe)
	if err != nil {
		log.Printf("recipe limit check failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Monthly recipe limit reached. Upgrade to premium for unlimited recipes.",
		})
		return
	}

	now := a.now()
	recipe := models.Recipe{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Cuisine:            req.Cuisine,
		Skill:              req.Skill,
		DietaryPreferences: req.DietaryPreferences,
		CookingTime:        req.CookingTime,
		Ingredients:        req.Ingredients,
		Steps:              req.Steps,
		Equipment:          req.Equipment,
		Image:              req.Image,
		UserID:             userID,
		Source:             models.SourceUser,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := a.recipes.InsertRecipe(c.Request.Context(), recipe); err != nil {
		log.Printf("create recipe failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := a.IncrementUsage(c.Request.Context(), userID, models.LimitRecipe); err != nil {
		log.Printf("recipe usage increment failed user=%s err=%v", userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"id": recipe.ID})
}

// UpdateRecipe applies an allow-listed partial update to a caller-owned,
// non-seeded recipe.
func (a *API) UpdateRecipe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe ID is required"})
		return
	}

	upd, err := parseRecipeUpdate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if upd.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No recognized fields to update"})
		return
	}

	recipe, err := a.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		log.Printf("update recipe lookup failed id=%s err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if recipe.IsSeeded {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot modify MealMuse recipe"})
		return
	}
	if recipe.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this recipe"})
		return
	}

	if err := a.recipes.UpdateRecipe(c.Request.Context(), id, upd); err != nil {
		log.Printf("update recipe failed id=%s err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe updated successfully"})
}

// parseRecipeUpdate decodes the body into the allow-listed update shape.
// Unrecognized fields are rejected rather than passed through to the store.
func parseRecipeUpdate(c *gin.Context) (models.RecipeUpdate, error) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		return models.RecipeUpdate{}, errors.New("Request body is required")
	}

	var upd models.RecipeUpdate
	for key, val := range raw {
		var err error
		switch key {
		case "title":
			err = json.Unmarshal(val, &upd.Title)
		case "cuisine":
			err = json.Unmarshal(val, &upd.Cuisine)
		case "skill":
			err = json.Unmarshal(val, &upd.Skill)
		case "dietaryPreferences":
			err = json.Unmarshal(val, &upd.DietaryPreferences)
		case "cookingTime":
			err = json.Unmarshal(val, &upd.CookingTime)
		case "ingredients":
			err = json.Unmarshal(val, &upd.Ingredients)
		case "steps":
			err = json.Unmarshal(val, &upd.Steps)
		case "equipment":
			err = json.Unmarshal(val, &upd.Equipment)
		case "image":
			err = json.Unmarshal(val, &upd.Image)
		default:
			return models.RecipeUpdate{}, errors.New("Unrecognized field: " + key)
		}
		if err != nil {
			return models.RecipeUpdate{}, errors.New("Invalid value for field: " + key)
		}
	}
	if upd.Skill != nil && !models.ValidSkill(*upd.Skill) {
		return models.RecipeUpdate{}, errors.New("Invalid skill level")
	}
	if upd.CookingTime != nil && *upd.CookingTime < 0 {
		return models.RecipeUpdate{}, errors.New("Invalid cooking time")
	}
	return upd, nil
}

// DeleteRecipe removes a caller-owned, non-seeded recipe.
func (a *API) DeleteRecipe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipe ID is required"})
		return
	}

	recipe, err := a.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		log.Printf("delete recipe lookup failed id=%s err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if recipe.IsSeeded {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot delete MealMuse recipe"})
		return
	}
	if recipe.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this recipe"})
		return
	}

	if err := a.recipes.DeleteRecipe(c.Request.Context(), id); err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("delete recipe failed id=%s err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// GenerateRecipe asks the AI for a structured recipe, persists it and logs
// the interaction. Quota is checked before the model call and consumed only
// after it succeeds, so a failed generation never costs quota.
func (a *API) GenerateRecipe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	allowed, err := a.CheckLimit(c.Request.Context(), userID, models.LimitRecipeGen)
	if err != nil {
		log.Printf("generation limit check failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Recipe generation limit reached. Upgrade to premium for unlimited generations.",
		})
		return
	}

	var req models.GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}

	generated, err := a.ai.GenerateRecipe(c.Request.Context(), req.Prompt)
	if err != nil {
		log.Printf("recipe generation failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recipe"})
		return
	}

	now := a.now()
	recipe := models.Recipe{
		ID:                 uuid.NewString(),
		Title:              generated.Title,
		Cuisine:            generated.Cuisine,
		Skill:              generated.Skill,
		DietaryPreferences: generated.DietaryPreferences,
		CookingTime:        generated.CookingTime,
		Ingredients:        generated.Ingredients,
		Steps:              generated.Steps,
		UserID:             userID,
		Source:             models.SourceAIGenerated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := a.recipes.InsertRecipe(c.Request.Context(), recipe); err != nil {
		log.Printf("persist generated recipe failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	interaction := models.AIInteraction{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            models.InteractionRecipeGeneration,
		Prompt:          req.Prompt,
		GeneratedRecipe: generated,
		Model:           a.ai.Model(),
		SavedToRecipes:  true,
		RecipeID:        recipe.ID,
		CreatedAt:       now,
	}
	if err := a.interactions.InsertInteraction(c.Request.Context(), interaction); err != nil {
		log.Printf("log generation interaction failed user=%s err=%v", userID, err)
	}

	if err := a.IncrementUsage(c.Request.Context(), userID, models.LimitRecipeGen); err != nil {
		log.Printf("generation usage increment failed user=%s err=%v", userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"recipe":   generated,
		"recipeId": recipe.ID,
		"message":  "Recipe generated and saved successfully",
	})
}

// ChatWithChef forwards the conversation to the AI chef and logs the
// exchange with a derived topic and keywords.
func (a *API) ChatWithChef(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ConversationHistory) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid conversationHistory"})
		return
	}

	allowed, err := a.CheckLimit(c.Request.Context(), userID, models.LimitAIChat)
	if err != nil {
		log.Printf("chat limit check failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Daily AI chat limit reached. Upgrade to premium for unlimited chats.",
		})
		return
	}

	reply, err := a.ai.Chat(c.Request.Context(), req.ConversationHistory)
	if err != nil {
		log.Printf("chef chat failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate chef response"})
		return
	}

	userQuery := lastUserMessage(req.ConversationHistory)
	keywords := extractKeywords(userQuery, reply)
	topic := req.Topic
	if topic == "" {
		topic = extractTopic(userQuery)
	}

	interaction := models.AIInteraction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      models.InteractionChefChat,
		UserQuery: userQuery,
		Response:  reply,
		Topic:     topic,
		Keywords:  keywords,
		Model:     a.ai.Model(),
		CreatedAt: a.now(),
	}
	if err := a.interactions.InsertInteraction(c.Request.Context(), interaction); err != nil {
		log.Printf("log chat interaction failed user=%s err=%v", userID, err)
	}

	if err := a.IncrementUsage(c.Request.Context(), userID, models.LimitAIChat); err != nil {
		log.Printf("chat usage increment failed user=%s err=%v", userID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"response":      reply,
		"interactionId": interaction.ID,
		"topic":         topic,
		"keywords":      keywords,
		"message":       "Chef response generated and saved successfully",
	})
}

func lastUserMessage(history []models.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if strings.EqualFold(history[i].Role, "user") {
			return history[i].Content
		}
	}
	return ""
}

// AddFavorite bookmarks a recipe for the caller.
func (a *API) AddFavorite(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RecipeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipeId is required"})
		return
	}

	exists, err := a.favorites.HasFavorite(c.Request.Context(), userID, req.RecipeID)
	if err != nil {
		log.Printf("favorite lookup failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if exists {
		c.JSON(http.StatusOK, gin.H{"alreadyFavorited": true})
		return
	}

	fav := models.Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		RecipeID:  req.RecipeID,
		CreatedAt: a.now(),
	}
	inserted, err := a.favorites.InsertFavorite(c.Request.Context(), fav)
	if err != nil {
		log.Printf("add favorite failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !inserted {
		// Lost the race to a concurrent add; the unique index held.
		c.JSON(http.StatusOK, gin.H{"alreadyFavorited": true})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"insertedId": fav.ID, "alreadyFavorited": false})
}

// RemoveFavorite deletes the caller's bookmark; removing a bookmark that was
// never added is a valid no-op.
func (a *API) RemoveFavorite(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	recipeID := c.Param("recipeId")
	if recipeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipeId is required"})
		return
	}

	deleted, err := a.favorites.DeleteFavorite(c.Request.Context(), userID, recipeID)
	if err != nil {
		log.Printf("remove favorite failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}

// ListFavorites returns the caller's bookmarks joined to their recipes.
func (a *API) ListFavorites(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	favorites, err := a.favorites.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list favorites failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// CheckFavorite reports whether the caller has bookmarked the recipe.
func (a *API) CheckFavorite(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	recipeID := c.Param("recipeId")
	if recipeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipeId is required"})
		return
	}

	favorited, err := a.favorites.HasFavorite(c.Request.Context(), userID, recipeID)
	if err != nil {
		log.Printf("check favorite failed user=%s err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFavorited": favorited})
}
