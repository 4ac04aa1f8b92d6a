package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidCategory indicates a category payload that fails validation.
var ErrInvalidCategory = errors.New("invalid category")

// Category groups products for browsing.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func NewCategory(name, image string) (*Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}

	return &Category{
		ID:    uuid.NewString(),
		Name:  name,
		Image: image,
	}, nil
}
