// Spoonacular catalog client and normalization into the internal recipe shape.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kingkey0101/mealmuse-api/app/models"
)

const spoonacularBaseURL = "https://api.spoonacular.com/recipes"

// SpoonacularRecipe mirrors the provider's complexSearch result shape.
type SpoonacularRecipe struct {
	ID                  int      `json:"id"`
	Title               string   `json:"title"`
	Image               string   `json:"image"`
	Cuisines            []string `json:"cuisines"`
	Diets               []string `json:"diets"`
	ReadyInMinutes      int      `json:"readyInMinutes"`
	SourceURL           string   `json:"sourceUrl"`
	ExtendedIngredients []struct {
		Name     string  `json:"name"`
		Amount   float64 `json:"amount"`
		Unit     string  `json:"unit"`
		Original string  `json:"original"`
	} `json:"extendedIngredients"`
	AnalyzedInstructions []struct {
		Steps []struct {
			Number int    `json:"number"`
			Step   string `json:"step"`
		} `json:"steps"`
	} `json:"analyzedInstructions"`
}

// CatalogSearchOptions narrows a catalog search.
type CatalogSearchOptions struct {
	Query       string
	Cuisine     string
	Diet        string
	MaxReadyMin int
	Number      int
	Offset      int
}

// SpoonacularClient talks to the Spoonacular REST API.
type SpoonacularClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewSpoonacularClient(apiKey string) *SpoonacularClient {
	return &SpoonacularClient{
		apiKey:  apiKey,
		baseURL: spoonacularBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// SearchRecipes runs a complexSearch. A missing key or provider failure is a
// normal error for the caller to surface, never a panic.
func (s *SpoonacularClient) SearchRecipes(ctx context.Context, opts CatalogSearchOptions) ([]SpoonacularRecipe, error) {
	if s.apiKey == "" {
		return nil, errors.New("SPOONACULAR_API_KEY not set")
	}

	number := opts.Number
	if number <= 0 {
		number = 20
	}

	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("number", strconv.Itoa(number))
	params.Set("offset", strconv.Itoa(opts.Offset))
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")
	params.Set("addRecipeInstructions", "true")
	if opts.Query != "" {
		params.Set("query", opts.Query)
	}
	if opts.Cuisine != "" {
		params.Set("cuisine", opts.Cuisine)
	}
	if opts.Diet != "" {
		params.Set("diet", opts.Diet)
	}
	if opts.MaxReadyMin > 0 {
		params.Set("maxReadyTime", strconv.Itoa(opts.MaxReadyMin))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/complexSearch?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	res, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spoonacular API error: %d", res.StatusCode)
	}

	var payload struct {
		Results []SpoonacularRecipe `json:"results"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// dietNames maps provider diet labels to the internal tag vocabulary.
var dietNames = map[string]string{
	"gluten free": "gluten-free",
	"dairy free":  "dairy-free",
	"ketogenic":   "keto-friendly",
	"paleo":       "paleo",
	"vegan":       "vegan",
	"vegetarian":  "vegetarian",
	"pescatarian": "pescatarian",
}

func mapDiets(diets []string) []string {
	out := make([]string, 0, len(diets))
	for _, d := range diets {
		lower := strings.ToLower(strings.TrimSpace(d))
		if lower == "" {
			continue
		}
		if mapped, ok := dietNames[lower]; ok {
			out = append(out, mapped)
			continue
		}
		out = append(out, lower)
	}
	return out
}

// skillFromReadyTime derives a skill level from total cooking time. Quick
// recipes are assumed beginner-friendly.
func skillFromReadyTime(readyInMinutes int) models.Skill {
	switch {
	case readyInMinutes <= 20:
		return models.SkillBeginner
	case readyInMinutes <= 45:
		return models.SkillIntermediate
	default:
		return models.SkillAdvanced
	}
}

// normalizeSpoonacularRecipe converts a provider record to the internal
// recipe shape, filling defaults for missing fields.
func normalizeSpoonacularRecipe(sp SpoonacularRecipe, now time.Time) models.Recipe {
	ingredients := make([]models.Ingredient, 0, len(sp.ExtendedIngredients))
	for _, ing := range sp.ExtendedIngredients {
		name := ing.Name
		if name == "" {
			name = ing.Original
		}
		if name == "" {
			name = "Unknown ingredient"
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:   name,
			Amount: ing.Amount,
			Unit:   ing.Unit,
		})
	}

	var steps []string
	if len(sp.AnalyzedInstructions) > 0 {
		for _, s := range sp.AnalyzedInstructions[0].Steps {
			if s.Step != "" {
				steps = append(steps, s.Step)
			}
		}
	}
	if len(steps) == 0 {
		steps = []string{"Recipe from Spoonacular. Visit the source URL for detailed instructions."}
	}

	title := sp.Title
	if title == "" {
		title = "Unknown Recipe"
	}
	cuisines := sp.Cuisines
	if len(cuisines) == 0 {
		cuisines = []string{"International"}
	}
	cookingTime := sp.ReadyInMinutes
	if cookingTime == 0 {
		cookingTime = 30
	}

	cachedAt := now
	return models.Recipe{
		Title:              title,
		Cuisine:            cuisines,
		Skill:              skillFromReadyTime(cookingTime),
		DietaryPreferences: mapDiets(sp.Diets),
		CookingTime:        cookingTime,
		Ingredients:        ingredients,
		Steps:              steps,
		Image:              sp.Image,
		SourceURL:          sp.SourceURL,
		Source:             models.SourceSpoonacular,
		SpoonacularID:      sp.ID,
		CachedAt:           &cachedAt,
	}
}
