package payment

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/blues/gfc/internal/config"
	"github.com/google/uuid"
)

// ChargeResult 网关扣款结果
type ChargeResult struct {
	Approved bool   `json:"approved"`
	TxnId    string `json:"txn_id"`
	Reason   string `json:"reason,omitempty"`
}

// Gateway 支付网关
type Gateway interface {
	// Name 网关标识，写入donation.gateway列
	Name() string
	// Charge 发起一笔扣款
	Charge(amount int64) (ChargeResult, error)
}

// ErrGatewayNotFound 未注册的网关
var ErrGatewayNotFound = errors.New("不支持的支付网关")

// Registry 网关注册表
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry 按配置装配网关
// demo网关始终可用；三个真实网关目前只有预留密钥，统一挂为占位实现
func NewRegistry(cfg config.GatewayConfig) *Registry {
	r := &Registry{gateways: make(map[string]Gateway)}
	r.Register(&DemoGateway{approveRate: 0.9})
	r.Register(&stubGateway{name: "razorpay", key: cfg.RazorpayKey})
	r.Register(&stubGateway{name: "stripe", key: cfg.StripeKey})
	r.Register(&stubGateway{name: "paytm", key: cfg.PaytmKey})
	return r
}

// Register 注册网关
func (r *Registry) Register(g Gateway) {
	r.gateways[g.Name()] = g
}

// Get 按名称取网关
func (r *Registry) Get(name string) (Gateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, ErrGatewayNotFound
	}
	return g, nil
}

// DemoGateway 演示网关，按比例随机放行
type DemoGateway struct {
	approveRate float64
}

// Name 网关标识
func (g *DemoGateway) Name() string {
	return "demo"
}

// Charge 随机模拟扣款结果，不涉及任何真实资金
func (g *DemoGateway) Charge(amount int64) (ChargeResult, error) {
	if amount <= 0 {
		return ChargeResult{}, errors.New("金额必须大于0")
	}

	if rand.Float64() < g.approveRate {
		return ChargeResult{
			Approved: true,
			TxnId:    "demo_" + uuid.NewString(),
		}, nil
	}
	return ChargeResult{
		Approved: false,
		Reason:   "模拟支付被拒绝",
	}, nil
}

// stubGateway 占位网关，密钥已接入配置但SDK尚未接入
type stubGateway struct {
	name string
	key  string
}

func (g *stubGateway) Name() string {
	return g.name
}

func (g *stubGateway) Charge(amount int64) (ChargeResult, error) {
	return ChargeResult{}, fmt.Errorf("网关 %s 尚未接入", g.name)
}
