package logic

import (
	"fmt"

	"github.com/blues/gfc/internal/model"
	"gorm.io/gorm"
)

// StatsLogic 统计业务逻辑
type StatsLogic struct {
	db *gorm.DB
}

// NewStatsLogic 创建统计业务逻辑
func NewStatsLogic(db *gorm.DB) *StatsLogic {
	return &StatsLogic{db: db}
}

// GetWishlistStats 单个清单统计信息
func (s *StatsLogic) GetWishlistStats(wishlistId int64) (map[string]interface{}, error) {
	var wishlist model.WishlistModel
	if err := s.db.First(&wishlist, wishlistId).Error; err != nil {
		return nil, ErrWishlistNotFound
	}

	var stats struct {
		DonationCount int64
		DonorCount    int64
		TotalAmount   int64
	}

	if err := s.db.Model(&model.DonationModel{}).
		Where("wishlist_id = ? AND status = ?", wishlistId, model.DonationStatusCompleted).
		Count(&stats.DonationCount).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠记录数失败: %w", err)
	}
	if err := s.db.Model(&model.DonationModel{}).
		Where("wishlist_id = ? AND status = ?", wishlistId, model.DonationStatusCompleted).
		Select("COUNT(DISTINCT donor_email)").Scan(&stats.DonorCount).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠人数失败: %w", err)
	}
	if err := s.db.Model(&model.DonationModel{}).
		Where("wishlist_id = ? AND status = ?", wishlistId, model.DonationStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalAmount).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠总额失败: %w", err)
	}

	progress := float64(0)
	if wishlist.TargetAmount > 0 {
		progress = float64(wishlist.RaisedAmount) / float64(wishlist.TargetAmount) * 100
	}

	return map[string]interface{}{
		"wishlist_id":    wishlistId,
		"target_amount":  wishlist.TargetAmount,
		"raised_amount":  wishlist.RaisedAmount,
		"progress":       fmt.Sprintf("%.1f%%", progress),
		"donation_count": stats.DonationCount,
		"donor_count":    stats.DonorCount,
		"total_amount":   stats.TotalAmount,
	}, nil
}

// GetPlatformStats 平台全局统计，供管理端仪表盘
func (s *StatsLogic) GetPlatformStats() (map[string]interface{}, error) {
	var stats struct {
		TotalNgos          int64
		VerifiedNgos       int64
		TotalWishlists     int64
		CompletedWishlists int64
		TotalDonations     int64
		TotalRaised        int64
		UniqueDonors       int64
	}

	if err := s.db.Model(&model.NgoModel{}).Count(&stats.TotalNgos).Error; err != nil {
		return nil, fmt.Errorf("获取机构总数失败: %w", err)
	}
	if err := s.db.Model(&model.NgoModel{}).Where("verified = ?", true).Count(&stats.VerifiedNgos).Error; err != nil {
		return nil, fmt.Errorf("获取认证机构数失败: %w", err)
	}
	if err := s.db.Model(&model.WishlistModel{}).Count(&stats.TotalWishlists).Error; err != nil {
		return nil, fmt.Errorf("获取清单总数失败: %w", err)
	}
	if err := s.db.Model(&model.WishlistModel{}).
		Where("status = ?", model.WishlistStatusCompleted).Count(&stats.CompletedWishlists).Error; err != nil {
		return nil, fmt.Errorf("获取完成清单数失败: %w", err)
	}

	if err := s.db.Model(&model.DonationModel{}).
		Where("status = ?", model.DonationStatusCompleted).
		Count(&stats.TotalDonations).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠总数失败: %w", err)
	}
	if err := s.db.Model(&model.DonationModel{}).
		Where("status = ?", model.DonationStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRaised).Error; err != nil {
		return nil, fmt.Errorf("获取筹款总额失败: %w", err)
	}
	if err := s.db.Model(&model.DonationModel{}).
		Where("status = ?", model.DonationStatusCompleted).
		Select("COUNT(DISTINCT donor_email)").Scan(&stats.UniqueDonors).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠人数失败: %w", err)
	}

	successRate := float64(0)
	if stats.TotalWishlists > 0 {
		successRate = float64(stats.CompletedWishlists) / float64(stats.TotalWishlists) * 100
	}

	return map[string]interface{}{
		"total_ngos":          stats.TotalNgos,
		"verified_ngos":       stats.VerifiedNgos,
		"total_wishlists":     stats.TotalWishlists,
		"completed_wishlists": stats.CompletedWishlists,
		"total_donations":     stats.TotalDonations,
		"total_raised":        stats.TotalRaised,
		"unique_donors":       stats.UniqueDonors,
		"success_rate":        fmt.Sprintf("%.1f%%", successRate),
	}, nil
}
