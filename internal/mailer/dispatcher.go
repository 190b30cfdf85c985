package mailer

import (
	"time"

	"github.com/blues/gfc/internal/logger"
	"github.com/blues/gfc/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Dispatcher 发件箱投递器
// 业务事务只写email_outbox行，真正的网络发送由协程池异步完成
type Dispatcher struct {
	db          *gorm.DB
	client      *Client
	pool        *ants.Pool
	maxAttempts int
}

// NewDispatcher 创建投递器
func NewDispatcher(db *gorm.DB, client *Client, workers, maxAttempts int) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 4
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		db:          db,
		client:      client,
		pool:        pool,
		maxAttempts: maxAttempts,
	}, nil
}

// Enqueue 在给定事务内写入发件箱行
func (d *Dispatcher) Enqueue(tx *gorm.DB, emails ...*model.EmailOutboxModel) error {
	for _, email := range emails {
		email.Status = model.OutboxStatusPending
		if err := tx.Create(email).Error; err != nil {
			return err
		}
	}
	return nil
}

// DispatchAsync 提交一批发件箱行到协程池尽快投递
// 池满或提交失败只记日志，等调度任务下一轮扫描兜底
func (d *Dispatcher) DispatchAsync(ids ...int64) {
	for _, id := range ids {
		emailId := id
		if err := d.pool.Submit(func() {
			d.deliver(emailId)
		}); err != nil {
			logger.Warn("Failed to submit outbox email %d to pool: %v", emailId, err)
		}
	}
}

// deliver 投递单封邮件并回写状态
// 先以条件更新认领pending行，即时投递与扫描任务撞上同一封邮件时只有一方发送
func (d *Dispatcher) deliver(id int64) {
	claim := d.db.Model(&model.EmailOutboxModel{}).
		Where("id = ? AND status = ?", id, model.OutboxStatusPending).
		Update("status", model.OutboxStatusSending)
	if claim.Error != nil {
		logger.Error("Failed to claim outbox email %d: %v", id, claim.Error)
		return
	}
	if claim.RowsAffected == 0 {
		return
	}

	var email model.EmailOutboxModel
	if err := d.db.First(&email, id).Error; err != nil {
		logger.Error("Failed to load outbox email %d: %v", id, err)
		return
	}

	result := d.client.Send(Payload{
		To:      email.To,
		Subject: email.Subject,
		Text:    email.Text,
		HTML:    email.HTML,
	})

	updates := map[string]interface{}{
		"attempts": gorm.Expr("attempts + 1"),
	}
	if result.Success {
		updates["status"] = model.OutboxStatusSent
		updates["last_error"] = ""
	} else {
		updates["last_error"] = result.Error
		if email.Attempts+1 >= d.maxAttempts {
			updates["status"] = model.OutboxStatusFailed
		} else {
			updates["status"] = model.OutboxStatusPending
		}
	}

	if err := d.db.Model(&model.EmailOutboxModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		logger.Error("Failed to update outbox email %d: %v", id, err)
		return
	}

	if result.Success {
		logger.Info("Outbox email %d delivered to %s", id, email.To)
	} else {
		logger.Warn("Outbox email %d delivery failed: %s", id, result.Error)
	}
}

// sendingStaleAfter 认领后超过此时长仍未回写的行视为进程崩溃遗留
const sendingStaleAfter = 10 * time.Minute

// SweepPending 扫描待投递邮件，逐封重新投递
// 崩溃遗留的sending行先退回pending，再走统一的认领投递
func (d *Dispatcher) SweepPending() (int, error) {
	reclaim := d.db.Model(&model.EmailOutboxModel{}).
		Where("status = ? AND updated_at < ?", model.OutboxStatusSending, time.Now().Add(-sendingStaleAfter)).
		Update("status", model.OutboxStatusPending)
	if reclaim.Error != nil {
		return 0, reclaim.Error
	}
	if reclaim.RowsAffected > 0 {
		logger.Warn("Outbox sweep reclaimed %d stale sending emails", reclaim.RowsAffected)
	}

	var emails []model.EmailOutboxModel
	err := d.db.Where("status = ? AND attempts < ?", model.OutboxStatusPending, d.maxAttempts).
		Order("created_at ASC").
		Limit(100).
		Find(&emails).Error
	if err != nil {
		return 0, err
	}

	for _, email := range emails {
		d.DispatchAsync(email.Id)
	}
	return len(emails), nil
}

// Stop 释放协程池
func (d *Dispatcher) Stop() {
	d.pool.Release()
}
