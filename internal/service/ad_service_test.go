package service

import (
	"context"
	"testing"

	"alphaboard/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdService_SubmitAd(t *testing.T) {
	adRepo := noopAdRepo()
	var created *models.Ad
	adRepo.createFn = func(_ context.Context, ad *models.Ad) error {
		ad.ID = 1
		created = ad
		return nil
	}

	svc := NewAdService(adRepo, noopAffiliateRepo())
	ad, err := svc.SubmitAd(context.Background(), SubmitAdInput{
		UserID:  3,
		Title:   "Broker promo",
		LinkURL: "https://broker.test/signup",
		Cost:    decimal.NewFromInt(250),
	})
	require.NoError(t, err)

	// Submissions always start in the moderation queue.
	assert.Equal(t, models.AdStatusPending, created.Status)
	assert.Equal(t, uint(1), ad.ID)
}

func TestAdService_SubmitAd_Validation(t *testing.T) {
	svc := NewAdService(noopAdRepo(), noopAffiliateRepo())
	ctx := context.Background()

	_, err := svc.SubmitAd(ctx, SubmitAdInput{UserID: 1, LinkURL: "https://x.test"})
	assert.Error(t, err)

	_, err = svc.SubmitAd(ctx, SubmitAdInput{UserID: 1, Title: "t", LinkURL: "not a url"})
	assert.Error(t, err)

	_, err = svc.SubmitAd(ctx, SubmitAdInput{
		UserID: 1, Title: "t", LinkURL: "https://x.test",
		Cost: decimal.NewFromInt(-5),
	})
	assert.Error(t, err)
}

func TestAdService_ModerationTransitions(t *testing.T) {
	tests := []struct {
		name      string
		from      models.AdStatus
		approve   bool
		wantErr   bool
		wantFinal models.AdStatus
	}{
		{name: "approve pending", from: models.AdStatusPending, approve: true, wantFinal: models.AdStatusApproved},
		{name: "reject pending", from: models.AdStatusPending, wantFinal: models.AdStatusRejected},
		{name: "approve pending_approval", from: models.AdStatusPendingApproval, approve: true, wantFinal: models.AdStatusApproved},
		{name: "approved is terminal", from: models.AdStatusApproved, approve: true, wantErr: true},
		{name: "rejected is terminal", from: models.AdStatusRejected, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adRepo := noopAdRepo()
			adRepo.getByIDFn = func(_ context.Context, id uint) (*models.Ad, error) {
				return &models.Ad{ID: id, Status: tt.from}, nil
			}
			var updatedTo models.AdStatus
			adRepo.updateStatusFn = func(_ context.Context, _ uint, status models.AdStatus) error {
				updatedTo = status
				return nil
			}

			svc := NewAdService(adRepo, noopAffiliateRepo())
			var err error
			var ad *models.Ad
			if tt.approve {
				ad, err = svc.Approve(context.Background(), 1)
			} else {
				ad, err = svc.Reject(context.Background(), 1)
			}

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFinal, ad.Status)
			assert.Equal(t, tt.wantFinal, updatedTo)
		})
	}
}

func TestAdService_UpsertAffiliateLink(t *testing.T) {
	affiliateRepo := noopAffiliateRepo()
	var created *models.AffiliateLink
	affiliateRepo.createFn = func(_ context.Context, link *models.AffiliateLink) error {
		link.ID = 5
		created = link
		return nil
	}
	affiliateRepo.getByIDFn = func(_ context.Context, id uint) (*models.AffiliateLink, error) {
		return &models.AffiliateLink{ID: id, Title: "old", URL: "https://old.test"}, nil
	}
	var updated *models.AffiliateLink
	affiliateRepo.updateFn = func(_ context.Context, link *models.AffiliateLink) error {
		updated = link
		return nil
	}

	svc := NewAdService(noopAdRepo(), affiliateRepo)
	ctx := context.Background()

	link, err := svc.UpsertAffiliateLink(ctx, UpsertAffiliateLinkInput{
		Title: "Partner", URL: "https://partner.test", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), link.ID)
	assert.True(t, created.IsActive)

	link, err = svc.UpsertAffiliateLink(ctx, UpsertAffiliateLinkInput{
		ID: 5, Title: "Partner v2", URL: "https://partner.test/v2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Partner v2", updated.Title)
	assert.False(t, link.IsActive)
}
