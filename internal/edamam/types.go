package edamam

import (
	"encoding/json"

	"github.com/matsen/rcp/internal/recipe"
)

// searchResponse is the response body of GET /search.
type searchResponse struct {
	Query string `json:"q"`
	From  int    `json:"from"`
	To    int    `json:"to"`
	Count int    `json:"count"`
	More  bool   `json:"more"`
	Hits  []hit  `json:"hits"`
}

type hit struct {
	Recipe apiRecipe `json:"recipe"`
}

type apiRecipe struct {
	Label           string          `json:"label"`
	URL             string          `json:"url"`
	IngredientLines []string        `json:"ingredientLines"`
	Ingredients     []apiIngredient `json:"ingredients"`
}

// apiIngredient keeps Measure and Food as pointers so absent and null
// values can be told apart from empty strings.
type apiIngredient struct {
	Text     string      `json:"text"`
	Quantity json.Number `json:"quantity"`
	Measure  *string     `json:"measure"`
	Food     *string     `json:"food"`
}

func (r apiRecipe) toRecipe(query string) recipe.Recipe {
	ingredients := make([]recipe.Ingredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ingredients[i] = recipe.NewIngredient(ing.Text, ing.Quantity, ing.Measure, ing.Food)
	}
	return recipe.Recipe{
		Query:       query,
		Name:        r.Label,
		URL:         r.URL,
		Ingredients: ingredients,
		Lines:       recipe.NormalizeLines(r.IngredientLines),
	}
}
