package service

import (
	"context"

	"thesisrepo/internal/models"
	"thesisrepo/internal/repository"
)

type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	thesisRepo   repository.ThesisRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, thesisRepo repository.ThesisRepository) *FavoriteService {
	return &FavoriteService{favoriteRepo: favoriteRepo, thesisRepo: thesisRepo}
}

func (s *FavoriteService) List(ctx context.Context, userID uint) ([]models.Favorite, error) {
	return s.favoriteRepo.ListByUser(ctx, userID)
}

func (s *FavoriteService) Add(ctx context.Context, userID, thesisID uint) (*models.Favorite, error) {
	ok, err := s.thesisRepo.Exists(ctx, thesisID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Thesis", thesisID)
	}
	return s.favoriteRepo.Add(ctx, userID, thesisID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, thesisID uint) error {
	return s.favoriteRepo.Remove(ctx, userID, thesisID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, thesisID uint) (bool, error) {
	return s.favoriteRepo.Exists(ctx, userID, thesisID)
}
