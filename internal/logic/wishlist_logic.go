package logic

import (
	"errors"
	"fmt"

	"github.com/blues/gfc/internal/model"
	"gorm.io/gorm"
)

// 清单相关错误
var (
	ErrWishlistNotFound     = errors.New("愿望清单不存在")
	ErrWishlistNotPublished = errors.New("愿望清单未发布")
)

// WishlistLogic 愿望清单业务逻辑
type WishlistLogic struct {
	db *gorm.DB
}

// NewWishlistLogic 创建愿望清单业务逻辑
func NewWishlistLogic(db *gorm.DB) *WishlistLogic {
	return &WishlistLogic{db: db}
}

// CreateWishlist 创建清单及物品，初始为草稿
// 返回的预览金额由物品单价合计得出，仅供前端展示，不写入raised_amount
func (w *WishlistLogic) CreateWishlist(wishlist *model.WishlistModel, items []model.WishlistItemModel) (int64, error) {
	if err := w.validateWishlist(wishlist, items); err != nil {
		return 0, err
	}

	wishlist.Status = model.WishlistStatusDraft
	wishlist.RaisedAmount = 0

	err := w.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wishlist).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].WishlistId = wishlist.Id
			items[i].FundedQty = 0
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return 0, fmt.Errorf("创建愿望清单失败: %w", err)
	}

	var preview int64
	for _, item := range items {
		preview += item.Price * int64(item.Qty)
	}
	return preview, nil
}

// GetWishlist 取清单及物品
func (w *WishlistLogic) GetWishlist(id int64) (*model.WishlistModel, []model.WishlistItemModel, error) {
	var wishlist model.WishlistModel
	if err := w.db.First(&wishlist, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWishlistNotFound
		}
		return nil, nil, fmt.Errorf("查询愿望清单失败: %w", err)
	}

	items, err := w.GetItems(id)
	if err != nil {
		return nil, nil, err
	}
	return &wishlist, items, nil
}

// GetItems 取清单物品
func (w *WishlistLogic) GetItems(wishlistId int64) ([]model.WishlistItemModel, error) {
	var items []model.WishlistItemModel
	if err := w.db.Where("wishlist_id = ?", wishlistId).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询清单物品失败: %w", err)
	}
	return items, nil
}

// GetItem 取单个物品
func (w *WishlistLogic) GetItem(itemId int64) (*model.WishlistItemModel, error) {
	var item model.WishlistItemModel
	if err := w.db.First(&item, itemId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("清单物品不存在")
		}
		return nil, fmt.Errorf("查询清单物品失败: %w", err)
	}
	return &item, nil
}

// ListPublished 公开清单列表
func (w *WishlistLogic) ListPublished(ngoId int64, page, pageSize int) ([]model.WishlistModel, int64, error) {
	query := w.db.Model(&model.WishlistModel{}).
		Where("status IN ?", []model.WishlistStatus{model.WishlistStatusPublished, model.WishlistStatusCompleted})
	if ngoId > 0 {
		query = query.Where("ngo_id = ?", ngoId)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询清单列表失败: %w", err)
	}

	var wishlists []model.WishlistModel
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&wishlists).Error; err != nil {
		return nil, 0, fmt.Errorf("查询清单列表失败: %w", err)
	}
	return wishlists, total, nil
}

// ListByNgo 机构名下全部清单，含草稿
func (w *WishlistLogic) ListByNgo(ngoId int64) ([]model.WishlistModel, error) {
	var wishlists []model.WishlistModel
	if err := w.db.Where("ngo_id = ?", ngoId).Order("created_at DESC").Find(&wishlists).Error; err != nil {
		return nil, fmt.Errorf("查询清单列表失败: %w", err)
	}
	return wishlists, nil
}

// ListPendingReview 待审核清单
func (w *WishlistLogic) ListPendingReview() ([]model.WishlistModel, error) {
	var wishlists []model.WishlistModel
	if err := w.db.Where("status = ?", model.WishlistStatusPending).Order("created_at ASC").Find(&wishlists).Error; err != nil {
		return nil, fmt.Errorf("查询清单列表失败: %w", err)
	}
	return wishlists, nil
}

// SubmitForReview 草稿提交审核
func (w *WishlistLogic) SubmitForReview(id int64) (*model.WishlistModel, error) {
	return w.transition(id, model.WishlistStatusDraft, model.WishlistStatusPending)
}

// Publish 审核通过，清单公开
func (w *WishlistLogic) Publish(id int64) (*model.WishlistModel, error) {
	return w.transition(id, model.WishlistStatusPending, model.WishlistStatusPublished)
}

// Reject 审核退回草稿
func (w *WishlistLogic) Reject(id int64) (*model.WishlistModel, error) {
	return w.transition(id, model.WishlistStatusPending, model.WishlistStatusDraft)
}

// Complete 机构手动结束清单
func (w *WishlistLogic) Complete(id int64) (*model.WishlistModel, error) {
	return w.transition(id, model.WishlistStatusPublished, model.WishlistStatusCompleted)
}

// transition 带前置状态校验的状态转移
func (w *WishlistLogic) transition(id int64, from, to model.WishlistStatus) (*model.WishlistModel, error) {
	var wishlist model.WishlistModel
	if err := w.db.First(&wishlist, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, fmt.Errorf("查询愿望清单失败: %w", err)
	}

	if wishlist.Status != from {
		return nil, fmt.Errorf("清单状态为 %s，无法变更为 %s", wishlist.Status, to)
	}

	if err := w.db.Model(&wishlist).Update("status", to).Error; err != nil {
		return nil, fmt.Errorf("更新清单状态失败: %w", err)
	}
	wishlist.Status = to
	return &wishlist, nil
}

// validateWishlist 校验清单数据
func (w *WishlistLogic) validateWishlist(wishlist *model.WishlistModel, items []model.WishlistItemModel) error {
	if wishlist.NgoId == 0 {
		return errors.New("所属机构不能为空")
	}
	if wishlist.Title == "" {
		return errors.New("清单标题不能为空")
	}
	if wishlist.TargetAmount <= 0 {
		return errors.New("目标金额必须大于0")
	}
	if len(items) == 0 {
		return errors.New("清单至少需要一件物品")
	}
	for _, item := range items {
		if item.Name == "" {
			return errors.New("物品名称不能为空")
		}
		if item.Price <= 0 {
			return errors.New("物品单价必须大于0")
		}
		if item.Qty <= 0 {
			return errors.New("物品数量必须大于0")
		}
	}
	return nil
}
