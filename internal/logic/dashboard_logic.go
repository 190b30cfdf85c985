package logic

import (
	"fmt"

	"github.com/blues/gfc/internal/auth"
	"github.com/blues/gfc/internal/model"
)

// DashboardView 仪表盘视图标识
type DashboardView string

const (
	DashboardViewDonor DashboardView = "donor"
	DashboardViewNgo   DashboardView = "ngo"
	DashboardViewAdmin DashboardView = "admin"
)

// Dashboard 角色分发后的仪表盘载荷，三个视图互斥，只填充其一
type Dashboard struct {
	View  DashboardView          `json:"view"`
	Donor *DonorDashboard        `json:"donor,omitempty"`
	Ngo   *NgoDashboard          `json:"ngo,omitempty"`
	Admin map[string]interface{} `json:"admin,omitempty"`
}

// DonorDashboard 捐赠人视图
type DonorDashboard struct {
	Donations     []model.DonationModel `json:"donations"`
	TotalDonated  int64                 `json:"total_donated"`
	DonationCount int64                 `json:"donation_count"`
}

// NgoDashboard 机构视图
type NgoDashboard struct {
	Ngos            []model.NgoModel      `json:"ngos"`
	Wishlists       []model.WishlistModel `json:"wishlists"`
	RecentDonations []model.DonationModel `json:"recent_donations"`
	TotalRaised     int64                 `json:"total_raised"`
}

// DashboardLogic 角色分发仪表盘
// 角色在这里二次解析，未知角色显式报错，不再默认捐赠人视图
type DashboardLogic struct {
	ngos      *NgoLogic
	wishlists *WishlistLogic
	donations *DonationLogic
	stories   *StoryLogic
	audits    *AuditLogic
	stats     *StatsLogic
}

// NewDashboardLogic 创建仪表盘业务逻辑
func NewDashboardLogic(ngos *NgoLogic, wishlists *WishlistLogic, donations *DonationLogic,
	stories *StoryLogic, audits *AuditLogic, stats *StatsLogic) *DashboardLogic {
	return &DashboardLogic{
		ngos:      ngos,
		wishlists: wishlists,
		donations: donations,
		stories:   stories,
		audits:    audits,
		stats:     stats,
	}
}

// Build 按角色组装仪表盘，恰好返回三个视图之一
func (d *DashboardLogic) Build(userId int64, roleStr string) (*Dashboard, error) {
	role, err := auth.ParseRole(roleStr)
	if err != nil {
		return nil, err
	}

	switch {
	case role == auth.RoleDonor:
		return d.buildDonor(userId)
	case role.IsNgoRole():
		return d.buildNgo(userId)
	case role.IsAdminRole():
		return d.buildAdmin()
	default:
		return nil, fmt.Errorf("角色 %s 没有对应的仪表盘", role)
	}
}

func (d *DashboardLogic) buildDonor(userId int64) (*Dashboard, error) {
	donations, total, err := d.donations.ListByDonor(userId, 1, 20)
	if err != nil {
		return nil, err
	}

	var donated int64
	for _, donation := range donations {
		if donation.Status == model.DonationStatusCompleted {
			donated += donation.Amount
		}
	}

	return &Dashboard{
		View: DashboardViewDonor,
		Donor: &DonorDashboard{
			Donations:     donations,
			TotalDonated:  donated,
			DonationCount: total,
		},
	}, nil
}

func (d *DashboardLogic) buildNgo(userId int64) (*Dashboard, error) {
	ngos, err := d.ngos.ListByOwner(userId)
	if err != nil {
		return nil, err
	}

	dashboard := &NgoDashboard{Ngos: ngos}
	for _, ngo := range ngos {
		wishlists, err := d.wishlists.ListByNgo(ngo.Id)
		if err != nil {
			return nil, err
		}
		dashboard.Wishlists = append(dashboard.Wishlists, wishlists...)
		for _, wl := range wishlists {
			dashboard.TotalRaised += wl.RaisedAmount
		}

		donations, _, err := d.donations.ListByNgo(ngo.Id, 1, 10)
		if err != nil {
			return nil, err
		}
		dashboard.RecentDonations = append(dashboard.RecentDonations, donations...)
	}

	return &Dashboard{View: DashboardViewNgo, Ngo: dashboard}, nil
}

func (d *DashboardLogic) buildAdmin() (*Dashboard, error) {
	stats, err := d.stats.GetPlatformStats()
	if err != nil {
		return nil, err
	}

	pendingNgos, err := d.ngos.ListUnverified()
	if err != nil {
		return nil, err
	}
	pendingWishlists, err := d.wishlists.ListPendingReview()
	if err != nil {
		return nil, err
	}
	pendingStories, err := d.stories.ListPendingApproval()
	if err != nil {
		return nil, err
	}
	recentAudits, _, err := d.audits.List("", 1, 20)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		View: DashboardViewAdmin,
		Admin: map[string]interface{}{
			"stats":             stats,
			"pending_ngos":      pendingNgos,
			"pending_wishlists": pendingWishlists,
			"pending_stories":   pendingStories,
			"recent_audits":     recentAudits,
		},
	}, nil
}
