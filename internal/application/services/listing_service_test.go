package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

func adminPrincipal() *authz.Principal {
	return &authz.Principal{Subject: "admin-sub", Username: "admin", Groups: []string{entities.GroupAdmins}}
}

func seedBusinesses(n int) []*entities.Business {
	businesses := make([]*entities.Business, n)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		businesses[i] = &entities.Business{
			ID:        fmt.Sprintf("biz-%02d", i),
			Name:      fmt.Sprintf("Business %02d", i),
			Status:    entities.BusinessStatusPendingReview,
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return businesses
}

func TestListingService_Pagination(t *testing.T) {
	ctx := context.Background()
	service := NewListingService(newFakeBusinessRepo(seedBusinesses(23)...))

	page1, err := service.List(ctx, adminPrincipal(), ListingParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page1.Items, 10)
	assert.Equal(t, 23, page1.TotalItems)
	assert.Equal(t, 3, page1.TotalPages)
	assert.Equal(t, "biz-00", page1.Items[0].ID)

	page3, err := service.List(ctx, adminPrincipal(), ListingParams{Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page3.Items, 3)
	assert.Equal(t, "biz-22", page3.Items[2].ID)
}

func TestListingService_PageClamping(t *testing.T) {
	ctx := context.Background()
	service := NewListingService(newFakeBusinessRepo(seedBusinesses(23)...))

	tests := []struct {
		name     string
		page     int
		wantPage int
		wantLen  int
	}{
		{name: "page zero clamps to first", page: 0, wantPage: 1, wantLen: 10},
		{name: "negative page clamps to first", page: -5, wantPage: 1, wantLen: 10},
		{name: "page past the end clamps to last", page: 99, wantPage: 3, wantLen: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := service.List(ctx, adminPrincipal(), ListingParams{Page: tt.page, PageSize: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Len(t, page.Items, tt.wantLen)
		})
	}
}

func TestListingService_EmptyResultStillReportsOnePage(t *testing.T) {
	service := NewListingService(newFakeBusinessRepo())

	page, err := service.List(context.Background(), adminPrincipal(), ListingParams{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 0, page.TotalItems)
}

func TestListingService_QueryFilterPreservesOrder(t *testing.T) {
	businesses := []*entities.Business{
		{ID: "b1", Name: "Blue Bottle Coffee", Status: entities.BusinessStatusVerified},
		{ID: "b2", Name: "Corner Bakery", Description: "coffee and pastries", Status: entities.BusinessStatusVerified},
		{ID: "b3", Name: "Hardware Store", Status: entities.BusinessStatusVerified},
		{ID: "b4", Name: "Roastery", Categories: []string{"Coffee Shop"}, Status: entities.BusinessStatusVerified},
	}
	service := NewListingService(newFakeBusinessRepo(businesses...))

	page, err := service.List(context.Background(), adminPrincipal(), ListingParams{Query: "COFFEE", PageSize: 10})
	require.NoError(t, err)

	ids := []string{}
	for _, b := range page.Items {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"b1", "b2", "b4"}, ids, "matches keep their original relative order")
}

func TestListingService_UpdatedWindow(t *testing.T) {
	service := NewListingService(newFakeBusinessRepo(seedBusinesses(23)...))

	after := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	before := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	page, err := service.List(context.Background(), adminPrincipal(), ListingParams{
		UpdatedAfter:  &after,
		UpdatedBefore: &before,
		PageSize:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems) // hours 10, 11, 12 inclusive
}

func TestListingService_StatusFilter(t *testing.T) {
	businesses := []*entities.Business{
		{ID: "b1", Name: "A", Status: entities.BusinessStatusPendingReview},
		{ID: "b2", Name: "B", Status: entities.BusinessStatusVerified},
		{ID: "b3", Name: "C", Status: entities.BusinessStatusFlagged},
	}
	service := NewListingService(newFakeBusinessRepo(businesses...))

	page, err := service.List(context.Background(), adminPrincipal(), ListingParams{
		Statuses: []entities.BusinessStatus{entities.BusinessStatusPendingReview, entities.BusinessStatusFlagged},
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
}

func TestListingService_NonAdminForbidden(t *testing.T) {
	service := NewListingService(newFakeBusinessRepo())

	customer := &authz.Principal{Subject: "sub", Username: "u", Groups: []string{entities.GroupCustomers}}
	_, err := service.List(context.Background(), customer, ListingParams{})
	assert.Error(t, err)

	_, err = service.List(context.Background(), nil, ListingParams{})
	assert.Error(t, err)
}
