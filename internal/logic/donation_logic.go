package logic

import (
	"errors"
	"fmt"

	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/mailer"
	"github.com/blues/gfc/internal/model"
	"github.com/blues/gfc/internal/payment"
	"github.com/blues/gfc/internal/wizard"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 捐赠相关错误
var (
	ErrDonationNotFound   = errors.New("捐赠记录不存在")
	ErrDonationNotPending = errors.New("捐赠不是待确认状态")
	ErrPaymentDeclined    = errors.New("支付未通过，请重试")
)

// ConfirmResult 捐赠确认结果
type ConfirmResult struct {
	DonationIds []int64 `json:"donation_ids"`
	Total       int64   `json:"total"`
	TxnId       string  `json:"txn_id"`
}

// Summary 成功页摘要
type Summary struct {
	DonorName string `json:"donor_name"`
	Total     int64  `json:"total"`
	NgoName   string `json:"ngo_name"`
}

// DonationLogic 捐赠业务逻辑
// 向导会话推进在内存完成，confirm时一个事务内落库全部业务写入
type DonationLogic struct {
	db         *gorm.DB
	sessions   *wizard.Store
	gateways   *payment.Registry
	dispatcher *mailer.Dispatcher
	wishlists  *WishlistLogic
	ngos       *NgoLogic
}

// NewDonationLogic 创建捐赠业务逻辑
func NewDonationLogic(db *gorm.DB, sessions *wizard.Store, gateways *payment.Registry,
	dispatcher *mailer.Dispatcher, wishlists *WishlistLogic, ngos *NgoLogic) *DonationLogic {
	return &DonationLogic{
		db:         db,
		sessions:   sessions,
		gateways:   gateways,
		dispatcher: dispatcher,
		wishlists:  wishlists,
		ngos:       ngos,
	}
}

// StartSession 为已发布清单开启捐赠向导会话
func (d *DonationLogic) StartSession(wishlistId, donorId int64) (*wizard.Session, error) {
	wishlist, _, err := d.wishlists.GetWishlist(wishlistId)
	if err != nil {
		return nil, err
	}
	if wishlist.Status != model.WishlistStatusPublished {
		return nil, ErrWishlistNotPublished
	}

	return d.sessions.Create(wishlistId, wishlist.NgoId, donorId), nil
}

// GetSession 取会话
func (d *DonationLogic) GetSession(sessionId string) (*wizard.Session, error) {
	return d.sessions.Get(sessionId)
}

// CancelSession 放弃捐赠流程，会话立即移除
func (d *DonationLogic) CancelSession(sessionId string) error {
	if _, err := d.sessions.Get(sessionId); err != nil {
		return err
	}
	d.sessions.Remove(sessionId)
	return nil
}

// ToggleItem 选中/取消选中清单物品
func (d *DonationLogic) ToggleItem(sessionId string, itemId int64) (*wizard.Session, error) {
	item, err := d.wishlists.GetItem(itemId)
	if err != nil {
		return nil, err
	}

	return d.sessions.Update(sessionId, func(s *wizard.Session) error {
		if item.WishlistId != s.WishlistId {
			return errors.New("物品不属于当前清单")
		}
		if s.Selected(itemId) {
			s.DeselectItem(itemId)
		} else {
			s.SelectItem(itemId, item.Price)
		}
		return nil
	})
}

// SetItemQty 修改已选物品数量
func (d *DonationLogic) SetItemQty(sessionId string, itemId int64, qty int) (*wizard.Session, error) {
	if qty < 1 {
		return nil, errors.New("数量必须大于0")
	}
	return d.sessions.Update(sessionId, func(s *wizard.Session) error {
		if !s.Selected(itemId) {
			return errors.New("请先选中该物品")
		}
		s.SetQty(itemId, qty)
		return nil
	})
}

// SetDetails 记录捐赠人信息
func (d *DonationLogic) SetDetails(sessionId, name, email string) (*wizard.Session, error) {
	return d.sessions.Update(sessionId, func(s *wizard.Session) error {
		s.SetDonorDetails(name, email)
		return nil
	})
}

// NextStep 向导前进一步
func (d *DonationLogic) NextStep(sessionId string) (*wizard.Session, error) {
	return d.sessions.Update(sessionId, func(s *wizard.Session) error {
		return s.NextStep()
	})
}

// PrevStep 向导后退一步
func (d *DonationLogic) PrevStep(sessionId string) (*wizard.Session, error) {
	return d.sessions.Update(sessionId, func(s *wizard.Session) error {
		return s.PrevStep()
	})
}

// Confirm 支付确认
// 网关扣款通过后，捐赠行、清单金额自增与发件箱行在同一事务内提交，
// 随后异步投递邮件；邮件失败不影响已提交的捐赠
func (d *DonationLogic) Confirm(sessionId, gatewayName string) (*ConfirmResult, error) {
	session, err := d.sessions.Get(sessionId)
	if err != nil {
		return nil, err
	}
	if session.Step != wizard.StepPayment {
		return nil, wizard.ErrNotPaymentStep
	}

	total := session.Total()
	if total <= 0 {
		return nil, wizard.ErrEmptySelection
	}

	gateway, err := d.gateways.Get(gatewayName)
	if err != nil {
		return nil, err
	}

	ngo, err := d.ngos.GetNgo(session.NgoId)
	if err != nil {
		return nil, err
	}

	charge, err := gateway.Charge(total)
	if err != nil {
		return nil, fmt.Errorf("发起支付失败: %w", err)
	}
	if !charge.Approved {
		// 留痕被拒绝的支付，会话停在payment步骤允许重试
		d.recordFailedCharge(session, gateway.Name(), total, charge.Reason)
		return nil, ErrPaymentDeclined
	}

	result := &ConfirmResult{Total: total, TxnId: charge.TxnId}
	var outboxIds []int64

	err = d.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range session.Cart {
			donation := &model.DonationModel{
				DonorId:        session.DonorId,
				NgoId:          session.NgoId,
				WishlistId:     session.WishlistId,
				WishlistItemId: item.ItemId,
				DonorName:      session.DonorName,
				DonorEmail:     session.DonorEmail,
				Amount:         int64(item.Qty) * item.Price,
				Qty:            item.Qty,
				Gateway:        gateway.Name(),
				TxnId:          fmt.Sprintf("%s-%d", charge.TxnId, item.ItemId),
				Status:         model.DonationStatusCompleted,
			}
			if err := tx.Create(donation).Error; err != nil {
				return err
			}
			result.DonationIds = append(result.DonationIds, donation.Id)

			// 认捐数量原子自增，封顶不超过qty
			if err := tx.Model(&model.WishlistItemModel{}).
				Where("id = ?", item.ItemId).
				Update("funded_qty", gorm.Expr(
					"CASE WHEN funded_qty + ? >= qty THEN qty ELSE funded_qty + ? END",
					item.Qty, item.Qty)).Error; err != nil {
				return err
			}
		}

		// 清单已筹金额原子自增，避免读改写丢失并发捐赠
		if err := tx.Model(&model.WishlistModel{}).
			Where("id = ?", session.WishlistId).
			Update("raised_amount", gorm.Expr("raised_amount + ?", total)).Error; err != nil {
			return err
		}

		// 达到目标金额的已发布清单转为完成
		if err := tx.Model(&model.WishlistModel{}).
			Where("id = ? AND status = ? AND raised_amount >= target_amount",
				session.WishlistId, model.WishlistStatusPublished).
			Update("status", model.WishlistStatusCompleted).Error; err != nil {
			return err
		}

		emails := d.buildConfirmEmails(session, ngo, total)
		if err := d.dispatcher.Enqueue(tx, emails...); err != nil {
			return err
		}
		for _, e := range emails {
			outboxIds = append(outboxIds, e.Id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("提交捐赠失败: %w", err)
	}

	d.dispatcher.DispatchAsync(outboxIds...)

	if _, err := d.sessions.Update(sessionId, func(s *wizard.Session) error {
		return s.Finish()
	}); err != nil {
		logger.Warn("Failed to finish session %s after commit: %v", sessionId, err)
	}

	logger.Info("Donation confirmed: session=%s wishlist=%d total=%d txn=%s",
		sessionId, session.WishlistId, total, charge.TxnId)
	return result, nil
}

// GetSummary 成功页摘要：捐赠人、合计金额、机构名称
func (d *DonationLogic) GetSummary(sessionId string) (*Summary, error) {
	session, err := d.sessions.Get(sessionId)
	if err != nil {
		return nil, err
	}

	ngo, err := d.ngos.GetNgo(session.NgoId)
	if err != nil {
		return nil, err
	}

	return &Summary{
		DonorName: session.DonorName,
		Total:     session.Total(),
		NgoName:   ngo.Name,
	}, nil
}

// CreateManualDonation 线下转账捐赠登记，初始为待确认
func (d *DonationLogic) CreateManualDonation(donation *model.DonationModel) error {
	if donation.NgoId == 0 || donation.WishlistId == 0 {
		return errors.New("机构和清单不能为空")
	}
	if donation.DonorName == "" || donation.DonorEmail == "" {
		return errors.New("捐赠人姓名和邮箱不能为空")
	}
	if donation.Amount <= 0 {
		return errors.New("金额必须大于0")
	}
	if _, err := d.ngos.GetSettlementAccount(donation.NgoId); err != nil {
		return err
	}

	donation.Gateway = "manual"
	donation.TxnId = "manual_" + uuid.NewString()
	donation.Status = model.DonationStatusPending
	if donation.Qty <= 0 {
		donation.Qty = 1
	}

	if err := d.db.Create(donation).Error; err != nil {
		return fmt.Errorf("登记捐赠失败: %w", err)
	}
	return nil
}

// ConfirmManualDonation 捐赠人声明转账完成
// 没有任何支付方信号，仅凭捐赠人确认即记为完成。
// 状态翻转带pending条件，并发的重复确认只有一个生效，金额不会重复入账
func (d *DonationLogic) ConfirmManualDonation(donationId int64) (*model.DonationModel, error) {
	var donation model.DonationModel
	if err := d.db.First(&donation, donationId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, fmt.Errorf("查询捐赠记录失败: %w", err)
	}

	ngo, err := d.ngos.GetNgo(donation.NgoId)
	if err != nil {
		return nil, err
	}

	var outboxIds []int64
	err = d.db.Transaction(func(tx *gorm.DB) error {
		flip := tx.Model(&model.DonationModel{}).
			Where("id = ? AND status = ?", donation.Id, model.DonationStatusPending).
			Update("status", model.DonationStatusCompleted)
		if flip.Error != nil {
			return flip.Error
		}
		if flip.RowsAffected == 0 {
			return ErrDonationNotPending
		}

		if err := tx.Model(&model.WishlistModel{}).
			Where("id = ?", donation.WishlistId).
			Update("raised_amount", gorm.Expr("raised_amount + ?", donation.Amount)).Error; err != nil {
			return err
		}

		if donation.WishlistItemId > 0 {
			if err := tx.Model(&model.WishlistItemModel{}).
				Where("id = ?", donation.WishlistItemId).
				Update("funded_qty", gorm.Expr(
					"CASE WHEN funded_qty + ? >= qty THEN qty ELSE funded_qty + ? END",
					donation.Qty, donation.Qty)).Error; err != nil {
				return err
			}
		}

		emails := d.buildManualConfirmEmails(&donation, ngo)
		if err := d.dispatcher.Enqueue(tx, emails...); err != nil {
			return err
		}
		for _, e := range emails {
			outboxIds = append(outboxIds, e.Id)
		}
		return nil
	})
	if errors.Is(err, ErrDonationNotPending) {
		return nil, ErrDonationNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("确认捐赠失败: %w", err)
	}

	d.dispatcher.DispatchAsync(outboxIds...)
	donation.Status = model.DonationStatusCompleted
	return &donation, nil
}

// ListByDonor 捐赠人的捐赠记录
func (d *DonationLogic) ListByDonor(donorId int64, page, pageSize int) ([]model.DonationModel, int64, error) {
	return d.list(d.db.Where("donor_id = ?", donorId), page, pageSize)
}

// ListByNgo 机构收到的捐赠记录
func (d *DonationLogic) ListByNgo(ngoId int64, page, pageSize int) ([]model.DonationModel, int64, error) {
	return d.list(d.db.Where("ngo_id = ?", ngoId), page, pageSize)
}

// ListByStatus 按状态取捐赠记录，管理端查看滞留的pending行
func (d *DonationLogic) ListByStatus(status model.DonationStatus, page, pageSize int) ([]model.DonationModel, int64, error) {
	return d.list(d.db.Where("status = ?", status), page, pageSize)
}

func (d *DonationLogic) list(query *gorm.DB, page, pageSize int) ([]model.DonationModel, int64, error) {
	var total int64
	if err := query.Model(&model.DonationModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询捐赠记录失败: %w", err)
	}

	var donations []model.DonationModel
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&donations).Error; err != nil {
		return nil, 0, fmt.Errorf("查询捐赠记录失败: %w", err)
	}
	return donations, total, nil
}

// recordFailedCharge 记录被网关拒绝的支付尝试
func (d *DonationLogic) recordFailedCharge(session *wizard.Session, gateway string, total int64, reason string) {
	donation := &model.DonationModel{
		DonorId:    session.DonorId,
		NgoId:      session.NgoId,
		WishlistId: session.WishlistId,
		DonorName:  session.DonorName,
		DonorEmail: session.DonorEmail,
		Amount:     total,
		Gateway:    gateway,
		TxnId:      "failed_" + uuid.NewString(),
		Status:     model.DonationStatusFailed,
	}
	if err := d.db.Create(donation).Error; err != nil {
		logger.Error("Failed to record declined charge: %v", err)
	}
	logger.Warn("Payment declined: session=%s reason=%s", session.Id, reason)
}

// buildConfirmEmails 捐赠人确认邮件 + 机构通知邮件（机构有联系邮箱时）
func (d *DonationLogic) buildConfirmEmails(session *wizard.Session, ngo *model.NgoModel, total int64) []*model.EmailOutboxModel {
	emails := []*model.EmailOutboxModel{
		{
			To:      session.DonorEmail,
			Subject: "感谢您的捐赠",
			Text: fmt.Sprintf("%s 您好，您向 %s 捐赠的 ₹%d 已确认，感谢您的爱心！",
				session.DonorName, ngo.Name, total),
			HTML: fmt.Sprintf("<p>%s 您好，</p><p>您向 <b>%s</b> 捐赠的 <b>₹%d</b> 已确认，感谢您的爱心！</p>",
				session.DonorName, ngo.Name, total),
		},
	}

	if ngo.ContactEmail != "" {
		emails = append(emails, &model.EmailOutboxModel{
			To:      ngo.ContactEmail,
			Subject: "收到新的捐赠",
			Text: fmt.Sprintf("%s 向您的愿望清单捐赠了 ₹%d。", session.DonorName, total),
			HTML: fmt.Sprintf("<p><b>%s</b> 向您的愿望清单捐赠了 <b>₹%d</b>。</p>", session.DonorName, total),
		})
	}
	return emails
}

// buildManualConfirmEmails 线下捐赠确认邮件
func (d *DonationLogic) buildManualConfirmEmails(donation *model.DonationModel, ngo *model.NgoModel) []*model.EmailOutboxModel {
	emails := []*model.EmailOutboxModel{
		{
			To:      donation.DonorEmail,
			Subject: "感谢您的捐赠",
			Text: fmt.Sprintf("%s 您好，您向 %s 的转账捐赠 ₹%d 已登记确认，感谢您的爱心！",
				donation.DonorName, ngo.Name, donation.Amount),
			HTML: fmt.Sprintf("<p>%s 您好，</p><p>您向 <b>%s</b> 的转账捐赠 <b>₹%d</b> 已登记确认，感谢您的爱心！</p>",
				donation.DonorName, ngo.Name, donation.Amount),
		},
	}

	if ngo.ContactEmail != "" {
		emails = append(emails, &model.EmailOutboxModel{
			To:      ngo.ContactEmail,
			Subject: "收到新的转账捐赠",
			Text: fmt.Sprintf("%s 声明已向您转账 ₹%d，请核对到账情况。", donation.DonorName, donation.Amount),
			HTML: fmt.Sprintf("<p><b>%s</b> 声明已向您转账 <b>₹%d</b>，请核对到账情况。</p>", donation.DonorName, donation.Amount),
		})
	}
	return emails
}
