// Package cli planctl 離線指令，以 JSON 檔案取代資料庫執行規劃流程
package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/planner"
	"meal-planner/internal/pkg/common"
)

// Dataset 與資料庫種子檔相同的格式
type Dataset struct {
	Ingredients []ingredient.Ingredient `json:"ingredients"`
	Profiles    []planner.Profile       `json:"profiles"`
}

// LoadDataset 讀取 JSON 資料檔
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	var ds Dataset
	if err := common.DecodeJSON(f, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &ds, nil
}

// fileSource 記憶體中的使用者與食材目錄
type fileSource struct {
	profiles map[string]planner.Profile
	catalog  []ingredient.Ingredient
}

var (
	_ planner.ProfileProvider = (*fileSource)(nil)
	_ planner.CatalogProvider = (*fileSource)(nil)
)

func newFileSource(ds *Dataset) *fileSource {
	src := &fileSource{
		profiles: make(map[string]planner.Profile, len(ds.Profiles)),
		catalog:  ingredient.Sort(ds.Ingredients, ingredient.SortByName, false),
	}
	for _, p := range ds.Profiles {
		src.profiles[p.User.ID] = p
	}
	return src
}

// defaultUser 只有一位使用者時可省略 --user
func (s *fileSource) defaultUser() (string, error) {
	if len(s.profiles) != 1 {
		ids := make([]string, 0, len(s.profiles))
		for id := range s.profiles {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return "", fmt.Errorf("--user is required when the data file has %d profiles %v", len(ids), ids)
	}
	for id := range s.profiles {
		return id, nil
	}
	return "", nil
}

// resolveIngredient 接受 ID 或不分大小寫的名稱，找不到時原樣回傳
func (s *fileSource) resolveIngredient(ref string) string {
	for _, it := range s.catalog {
		if it.ID == ref {
			return it.ID
		}
	}
	for _, it := range s.catalog {
		if common.Normalize(it.Name) == common.Normalize(ref) {
			return it.ID
		}
	}
	return ref
}

func (s *fileSource) Profile(_ context.Context, userID string) (*planner.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return &p, nil
}

func (s *fileSource) Ingredients(_ context.Context, q planner.CatalogQuery) ([]ingredient.Ingredient, error) {
	items := s.catalog
	if q.Category != "" {
		items = ingredient.FilterByCategory(items, q.Category)
	}
	if q.DiabeticFriendlyOnly {
		items = ingredient.FilterByNutrition(items, ingredient.NutritionCriteria{DiabeticFriendlyOnly: true})
	}
	items = ingredient.FilterBySearch(items, q.Search)
	if len(q.IDs) > 0 {
		items = ingredient.Apply(items, func(i ingredient.Ingredient) bool {
			return common.ContainsFold(q.IDs, i.ID)
		})
	}
	return items, nil
}
