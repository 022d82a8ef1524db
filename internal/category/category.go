package category

import (
	categoryDatamodel "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/category"
)

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func FromDataModel(c *categoryDatamodel.Category) Category {
	out := Category{ID: c.ID, Name: c.Name}
	if c.Description != nil {
		out.Description = *c.Description
	}
	return out
}

func FromDataModelSlice(categories []categoryDatamodel.Category) []Category {
	result := make([]Category, len(categories))
	for i := range categories {
		result[i] = FromDataModel(&categories[i])
	}
	return result
}

// Find returns the category with id from list.
func Find(list []Category, id int64) (Category, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
