package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	tsclient "github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/typesense"
)

const collectionName = "businesses"

// TypesenseAdapter implements business search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements BusinessSearchRepository
var _ repositories.BusinessSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	// Check if collection exists
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "categories", Type: "string[]", Facet: pointer.True()},
			{Name: "city", Type: "string", Facet: pointer.True()},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "is_minority_owned", Type: "bool"},
			{Name: "average_rating", Type: "float"},
			{Name: "number_of_ratings", Type: "int32"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Reset drops the collection so InitSchema can rebuild it from scratch
func (a *TypesenseAdapter) Reset(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete typesense collection: %w", err)
	}
	return nil
}

// Index indexes a business document
func (a *TypesenseAdapter) Index(ctx context.Context, business *entities.Business) error {
	document := map[string]interface{}{
		"id":                business.ID,
		"name":              business.Name,
		"description":       business.Description,
		"categories":        business.Categories,
		"city":              business.Location.City,
		"status":            string(business.Status),
		"is_minority_owned": business.IsMinorityOwned,
		"average_rating":    business.AverageRating,
		"number_of_ratings": business.NumberOfRatings,
		"created_at":        business.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index business: %w", err)
	}

	return nil
}

// Delete removes a business from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete business from index: %w", err)
	}
	return nil
}

// Search searches businesses matching the given params
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.SearchParams) ([]*entities.Business, error) {
	query := params.Query
	if query == "" {
		query = "*"
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name,description,categories,city"),
		Page:    pointer.Int(params.Offset/limit + 1),
		PerPage: pointer.Int(limit),
	}

	if filterBy := buildFilterBy(params); filterBy != "" {
		searchParams.FilterBy = pointer.String(filterBy)
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search businesses: %w", err)
	}

	businesses := []*entities.Business{}
	if result.Hits == nil {
		return businesses, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		// Typesense returns map[string]interface{}, so cast defensively
		business := &entities.Business{
			ID:     doc["id"].(string),
			Name:   doc["name"].(string),
			Status: entities.BusinessStatus(doc["status"].(string)),
		}

		if val, ok := doc["description"].(string); ok {
			business.Description = val
		}
		if val, ok := doc["city"].(string); ok {
			business.Location.City = val
		}
		if val, ok := doc["is_minority_owned"].(bool); ok {
			business.IsMinorityOwned = val
		}
		if val, ok := doc["average_rating"].(float64); ok {
			business.AverageRating = val
		}
		if val, ok := doc["number_of_ratings"].(float64); ok {
			business.NumberOfRatings = int(val)
		}
		if vals, ok := doc["categories"].([]interface{}); ok {
			categories := make([]string, 0, len(vals))
			for _, v := range vals {
				if s, ok := v.(string); ok {
					categories = append(categories, s)
				}
			}
			business.Categories = categories
		}

		businesses = append(businesses, business)
	}

	return businesses, nil
}

func buildFilterBy(params repositories.SearchParams) string {
	clauses := []string{}

	if len(params.Statuses) > 0 {
		statuses := make([]string, len(params.Statuses))
		for i, s := range params.Statuses {
			statuses[i] = string(s)
		}
		clauses = append(clauses, fmt.Sprintf("status:=[%s]", strings.Join(statuses, ",")))
	}
	if len(params.Categories) > 0 {
		clauses = append(clauses, fmt.Sprintf("categories:=[%s]", strings.Join(params.Categories, ",")))
	}
	if params.City != "" {
		clauses = append(clauses, fmt.Sprintf("city:=%s", params.City))
	}
	if params.MinorityOwned != nil {
		clauses = append(clauses, fmt.Sprintf("is_minority_owned:=%t", *params.MinorityOwned))
	}
	if params.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("average_rating:>=%g", *params.MinRating))
	}

	return strings.Join(clauses, " && ")
}
