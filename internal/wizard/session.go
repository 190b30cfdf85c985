package wizard

import (
	"errors"
	"time"
)

// Step 捐赠向导步骤
type Step string

const (
	StepConfirmation Step = "confirmation" // 选择物品
	StepDetails      Step = "details"      // 捐赠人信息
	StepPayment      Step = "payment"      // 支付确认
	StepSuccess      Step = "success"      // 完成
)

// steps 固定线性顺序，不允许跳步或分支
var steps = []Step{StepConfirmation, StepDetails, StepPayment, StepSuccess}

var (
	// ErrEmptySelection 未选择任何物品
	ErrEmptySelection = errors.New("请至少选择一件物品")
	// ErrMissingDonorInfo 捐赠人姓名或邮箱缺失
	ErrMissingDonorInfo = errors.New("请填写捐赠人姓名和邮箱")
	// ErrSessionFinished 会话已到达success，不再接受任何转移
	ErrSessionFinished = errors.New("捐赠流程已完成")
	// ErrAlreadyFirstStep 已在第一步，无法后退
	ErrAlreadyFirstStep = errors.New("已经是第一步")
	// ErrNotPaymentStep 仅支付步骤可以确认捐赠
	ErrNotPaymentStep = errors.New("当前步骤不能确认支付")
)

// CartItem 购物车条目
type CartItem struct {
	ItemId int64 `json:"item_id"`
	Qty    int   `json:"qty"`
	Price  int64 `json:"price"`
}

// Session 捐赠向导会话
// 在confirm落库之前，购物车与捐赠人信息只存在于会话中
type Session struct {
	Id         string     `json:"id"`
	WishlistId int64      `json:"wishlist_id"`
	NgoId      int64      `json:"ngo_id"`
	DonorId    int64      `json:"donor_id"`
	Step       Step       `json:"step"`
	Cart       []CartItem `json:"cart"`
	DonorName  string     `json:"donor_name"`
	DonorEmail string     `json:"donor_email"`
	CreatedAt  time.Time  `json:"created_at"`
	LastActive time.Time  `json:"last_active"`
}

// NewSession 创建新会话，起始步骤为选择物品
func NewSession(id string, wishlistId, ngoId int64) *Session {
	now := time.Now()
	return &Session{
		Id:         id,
		WishlistId: wishlistId,
		NgoId:      ngoId,
		Step:       StepConfirmation,
		Cart:       []CartItem{},
		CreatedAt:  now,
		LastActive: now,
	}
}

// Clone 会话快照，购物车独立复制
func (s *Session) Clone() *Session {
	copied := *s
	copied.Cart = make([]CartItem, len(s.Cart))
	copy(copied.Cart, s.Cart)
	return &copied
}

// SelectItem 选中物品加入购物车，默认数量为1
// 重复选中已存在的物品不做任何变更
func (s *Session) SelectItem(itemId int64, price int64) {
	for _, it := range s.Cart {
		if it.ItemId == itemId {
			return
		}
	}
	s.Cart = append(s.Cart, CartItem{ItemId: itemId, Qty: 1, Price: price})
}

// DeselectItem 取消选中，条目整体移除，数量不保留
func (s *Session) DeselectItem(itemId int64) {
	for i, it := range s.Cart {
		if it.ItemId == itemId {
			s.Cart = append(s.Cart[:i], s.Cart[i+1:]...)
			return
		}
	}
}

// SetQty 修改已选中物品的数量，未选中或数量非法时忽略
func (s *Session) SetQty(itemId int64, qty int) {
	if qty < 1 {
		return
	}
	for i := range s.Cart {
		if s.Cart[i].ItemId == itemId {
			s.Cart[i].Qty = qty
			return
		}
	}
}

// Selected 物品是否在购物车中
func (s *Session) Selected(itemId int64) bool {
	for _, it := range s.Cart {
		if it.ItemId == itemId {
			return true
		}
	}
	return false
}

// Total 购物车合计金额 Σ qty×price
func (s *Session) Total() int64 {
	var total int64
	for _, it := range s.Cart {
		total += int64(it.Qty) * it.Price
	}
	return total
}

// SetDonorDetails 记录捐赠人信息
func (s *Session) SetDonorDetails(name, email string) {
	s.DonorName = name
	s.DonorEmail = email
}

// NextStep 前进一步，按当前步骤校验前置条件
func (s *Session) NextStep() error {
	switch s.Step {
	case StepConfirmation:
		if len(s.Cart) == 0 {
			return ErrEmptySelection
		}
		s.Step = StepDetails
	case StepDetails:
		if s.DonorName == "" || s.DonorEmail == "" {
			return ErrMissingDonorInfo
		}
		if len(s.Cart) == 0 {
			return ErrEmptySelection
		}
		s.Step = StepPayment
	case StepPayment:
		return ErrNotPaymentStep
	case StepSuccess:
		return ErrSessionFinished
	}
	return nil
}

// PrevStep 后退一步，不丢弃任何已填写数据
func (s *Session) PrevStep() error {
	if s.Step == StepSuccess {
		return ErrSessionFinished
	}
	for i, step := range steps {
		if step == s.Step {
			if i == 0 {
				return ErrAlreadyFirstStep
			}
			s.Step = steps[i-1]
			return nil
		}
	}
	return nil
}

// Finish 由confirm动作触发，payment之外的步骤不可完成
func (s *Session) Finish() error {
	if s.Step == StepSuccess {
		return ErrSessionFinished
	}
	if s.Step != StepPayment {
		return ErrNotPaymentStep
	}
	s.Step = StepSuccess
	return nil
}
