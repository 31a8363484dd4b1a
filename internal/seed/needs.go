package seed

import (
	"context"
	"fmt"

	"cupboard/internal/store"
	"cupboard/internal/utils"
	"cupboard/pkg/types"
)

var seedNeeds = []*types.Need{
	{
		Name:            "Blankets",
		Description:     "Warm fleece blankets for the winter shelter",
		Cost:            10,
		Quantity:        25,
		Category:        types.CategoryClothing,
		Priority:        types.PriorityHigh,
		IsTimeSensitive: true,
		Address:         "401 W Main St",
		Latitude:        utils.Float64Ptr(35.9132),
		Longitude:       utils.Float64Ptr(-79.0558),
	},
	{
		Name:        "Canned Soup",
		Description: "Hearty soups for the food pantry shelves",
		Cost:        2.5,
		Quantity:    120,
		Category:    types.CategoryFood,
		Priority:    types.PriorityMedium,
	},
	{
		Name:        "Toothpaste",
		Description: "Travel-size tubes for hygiene kits",
		Cost:        1.75,
		Quantity:    80,
		Category:    types.CategoryToiletries,
		Priority:    types.PriorityLow,
	},
	{
		Name:            "First Aid Kits",
		Description:     "Compact kits for outreach volunteers",
		Cost:            18,
		Quantity:        15,
		Category:        types.CategoryMedical,
		Priority:        types.PriorityHigh,
		IsTimeSensitive: false,
	},
	{
		Name:        "School Notebooks",
		Description: "Spiral notebooks for the back-to-school drive",
		Cost:        1.25,
		Quantity:    200,
		Category:    types.CategoryEducation,
		Priority:    types.PriorityMedium,
	},
}

func Needs(ctx context.Context, needRepo *store.NeedRepository) ([]*types.Need, error) {
	existing, err := needRepo.Needs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing needs: %w", err)
	}

	if len(existing) > 0 {
		return nil, nil
	}

	created := make([]*types.Need, 0, len(seedNeeds))
	for _, need := range seedNeeds {
		if err := needRepo.CreateNeed(ctx, need); err != nil {
			return nil, fmt.Errorf("failed to create seed need %s: %w", need.Name, err)
		}
		created = append(created, need)
	}

	return created, nil
}
