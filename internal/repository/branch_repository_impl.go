package repository

import (
	"context"
	"errors"

	"clinic-finder/internal/domain/entity"
	domainRepo "clinic-finder/internal/domain/repository"

	"gorm.io/gorm"
)

type branchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) domainRepo.BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) FindAll(ctx context.Context) ([]entity.Branch, error) {
	var branches []entity.Branch
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&branches).Error
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *branchRepository) FindByID(ctx context.Context, id int) (*entity.Branch, error) {
	var branch entity.Branch
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&branch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}
