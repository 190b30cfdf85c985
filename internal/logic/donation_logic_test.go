package logic

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/gfc/internal/config"
	"github.com/blues/gfc/internal/database"
	"github.com/blues/gfc/internal/mailer"
	"github.com/blues/gfc/internal/model"
	"github.com/blues/gfc/internal/payment"
	"github.com/blues/gfc/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// approvedGateway 固定放行的测试网关，注册名覆盖demo网关
type approvedGateway struct {
	charges int
}

func (g *approvedGateway) Name() string { return "demo" }
func (g *approvedGateway) Charge(amount int64) (payment.ChargeResult, error) {
	g.charges++
	return payment.ChargeResult{Approved: true, TxnId: fmt.Sprintf("demo_test_txn_%d", g.charges)}, nil
}

// declinedGateway 固定拒绝的测试网关
type declinedGateway struct{}

func (g *declinedGateway) Name() string { return "demo" }
func (g *declinedGateway) Charge(amount int64) (payment.ChargeResult, error) {
	return payment.ChargeResult{Approved: false, Reason: "test decline"}, nil
}

func setupDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func setupDispatcher(t *testing.T, db *gorm.DB) *mailer.Dispatcher {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "email sent"})
	}))
	t.Cleanup(relay.Close)

	dispatcher, err := mailer.NewDispatcher(db, mailer.NewClient(relay.URL), 2, 3)
	require.NoError(t, err)
	t.Cleanup(dispatcher.Stop)
	return dispatcher
}

func setupDonationLogic(t *testing.T, db *gorm.DB, gateway payment.Gateway) *DonationLogic {
	registry := payment.NewRegistry(config.GatewayConfig{})
	registry.Register(gateway)
	return NewDonationLogic(db, wizard.NewStore(), registry,
		setupDispatcher(t, db), NewWishlistLogic(db), NewNgoLogic(db))
}

func seedWishlist(t *testing.T, db *gorm.DB, itemQty int) (*model.NgoModel, *model.WishlistModel, *model.WishlistItemModel) {
	ngo := &model.NgoModel{
		OwnerId:        1,
		Name:           "Helping Hands Trust",
		RegistrationNo: "NGO-" + t.Name(),
		ContactEmail:   "contact@helpinghands.org",
		Verified:       true,
		Slug:           "helping-hands-" + t.Name(),
	}
	require.NoError(t, db.Create(ngo).Error)

	wishlist := &model.WishlistModel{
		NgoId:        ngo.Id,
		Title:        "School Supplies",
		TargetAmount: 1000,
		Status:       model.WishlistStatusPublished,
	}
	require.NoError(t, db.Create(wishlist).Error)

	item := &model.WishlistItemModel{
		WishlistId: wishlist.Id,
		Name:       "Notebook Bundle",
		Price:      250,
		Qty:        itemQty,
	}
	require.NoError(t, db.Create(item).Error)
	return ngo, wishlist, item
}

func TestDonationHappyPath(t *testing.T) {
	db := setupDB(t)
	logic := setupDonationLogic(t, db, &approvedGateway{})
	ngo, wishlist, item := seedWishlist(t, db, 5)

	session, err := logic.StartSession(wishlist.Id, 1)
	require.NoError(t, err)

	_, err = logic.ToggleItem(session.Id, item.Id)
	require.NoError(t, err)
	_, err = logic.NextStep(session.Id)
	require.NoError(t, err)
	_, err = logic.SetDetails(session.Id, "Jane", "jane@x.com")
	require.NoError(t, err)
	_, err = logic.NextStep(session.Id)
	require.NoError(t, err)

	result, err := logic.Confirm(session.Id, "demo")
	require.NoError(t, err)
	assert.Equal(t, int64(250), result.Total)
	assert.Len(t, result.DonationIds, 1)

	// donation row persisted as completed
	var donation model.DonationModel
	require.NoError(t, db.First(&donation, result.DonationIds[0]).Error)
	assert.Equal(t, model.DonationStatusCompleted, donation.Status)
	assert.Equal(t, "Jane", donation.DonorName)
	assert.Equal(t, int64(250), donation.Amount)

	// both increments committed in the same transaction
	var gotItem model.WishlistItemModel
	require.NoError(t, db.First(&gotItem, item.Id).Error)
	assert.Equal(t, 1, gotItem.FundedQty)

	var gotWishlist model.WishlistModel
	require.NoError(t, db.First(&gotWishlist, wishlist.Id).Error)
	assert.Equal(t, int64(250), gotWishlist.RaisedAmount)
	assert.Equal(t, model.WishlistStatusPublished, gotWishlist.Status)

	// donor confirmation plus ngo notification in the outbox
	var outbox []model.EmailOutboxModel
	require.NoError(t, db.Order("id").Find(&outbox).Error)
	require.Len(t, outbox, 2)
	assert.Equal(t, "jane@x.com", outbox[0].To)
	assert.Equal(t, ngo.ContactEmail, outbox[1].To)

	// session finished, summary reflects the committed donation
	got, err := logic.GetSession(session.Id)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepSuccess, got.Step)

	summary, err := logic.GetSummary(session.Id)
	require.NoError(t, err)
	assert.Equal(t, "Jane", summary.DonorName)
	assert.Equal(t, int64(250), summary.Total)
	assert.Equal(t, ngo.Name, summary.NgoName)
}

func TestDonationFundedQtyCapped(t *testing.T) {
	db := setupDB(t)
	logic := setupDonationLogic(t, db, &approvedGateway{})
	_, wishlist, item := seedWishlist(t, db, 2)

	session, err := logic.StartSession(wishlist.Id, 1)
	require.NoError(t, err)
	_, err = logic.ToggleItem(session.Id, item.Id)
	require.NoError(t, err)
	_, err = logic.SetItemQty(session.Id, item.Id, 5)
	require.NoError(t, err)
	_, err = logic.NextStep(session.Id)
	require.NoError(t, err)
	_, err = logic.SetDetails(session.Id, "Jane", "jane@x.com")
	require.NoError(t, err)
	_, err = logic.NextStep(session.Id)
	require.NoError(t, err)

	_, err = logic.Confirm(session.Id, "demo")
	require.NoError(t, err)

	var gotItem model.WishlistItemModel
	require.NoError(t, db.First(&gotItem, item.Id).Error)
	assert.Equal(t, 2, gotItem.FundedQty)
	assert.True(t, gotItem.Funded())
}

func TestDonationReachingTargetCompletesWishlist(t *testing.T) {
	db := setupDB(t)
	logic := setupDonationLogic(t, db, &approvedGateway{})
	_, wishlist, item := seedWishlist(t, db, 5)

	session, err := logic.StartSession(wishlist.Id, 1)
	require.NoError(t, err)
	_, err = logic.ToggleItem(session.Id, item.Id)
	require.NoError(t, err)
	// 4 x 250 reaches the 1000 target
	_, err = logic.SetItemQty(session.Id, item.Id, 4)
	require.NoError(t, err)
	_, err = logic.NextStep(session.Id)
	require.NoError(t, err)
	_, err = logic.SetDetails(session.Id, "Jane", "jane@x.com")
	require.NoError(t, err)
	_, err = logic.NextStep(session.Id)
	require.NoError(t, err)

	_, err = logic.Confirm(session.Id, "demo")
	require.NoError(t, err)

	var gotWishlist model.WishlistModel
	require.NoError(t, db.First(&gotWishlist, wishlist.Id).Error)
	assert.Equal(t, int64(1000), gotWishlist.RaisedAmount)
	assert.Equal(t, model.WishlistStatusCompleted, gotWishlist.Status)
}

func TestDonationDeclinedPayment(t *testing.T) {
	db := setupDB(t)
	logic := setupDonationLogic(t, db, &declinedGateway{})
	_, wishlist, item := seedWishlist(t, db, 5)

	session, err := logic.StartSession(wishlist.Id, 1)
	require.NoError(t, err)
	_, err = logic.ToggleItem(session.Id, item.Id)
	require.NoError(t, err)
	_, err = logic.NextStep(session.Id)
	require.NoError(t, err)
	_, err = logic.SetDetails(session.Id, "Jane", "jane@x.com")
	require.NoError(t, err)
	_, err = logic.NextStep(session.Id)
	require.NoError(t, err)

	_, err = logic.Confirm(session.Id, "demo")
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// nothing credited, session stays on payment for a retry
	var gotWishlist model.WishlistModel
	require.NoError(t, db.First(&gotWishlist, wishlist.Id).Error)
	assert.Equal(t, int64(0), gotWishlist.RaisedAmount)

	got, err := logic.GetSession(session.Id)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepPayment, got.Step)

	// the declined attempt is kept for audit
	var failed int64
	require.NoError(t, db.Model(&model.DonationModel{}).
		Where("status = ?", model.DonationStatusFailed).Count(&failed).Error)
	assert.Equal(t, int64(1), failed)
}

func TestCancelSession(t *testing.T) {
	db := setupDB(t)
	logic := setupDonationLogic(t, db, &approvedGateway{})
	_, wishlist, _ := seedWishlist(t, db, 5)

	session, err := logic.StartSession(wishlist.Id, 1)
	require.NoError(t, err)

	require.NoError(t, logic.CancelSession(session.Id))
	_, err = logic.GetSession(session.Id)
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)

	assert.ErrorIs(t, logic.CancelSession(session.Id), wizard.ErrSessionNotFound)
}

func TestStartSessionRequiresPublishedWishlist(t *testing.T) {
	db := setupDB(t)
	logic := setupDonationLogic(t, db, &approvedGateway{})
	_, wishlist, _ := seedWishlist(t, db, 5)
	require.NoError(t, db.Model(wishlist).Update("status", model.WishlistStatusDraft).Error)

	_, err := logic.StartSession(wishlist.Id, 1)
	assert.ErrorIs(t, err, ErrWishlistNotPublished)
}

func TestManualDonationFlow(t *testing.T) {
	db := setupDB(t)
	logic := setupDonationLogic(t, db, &approvedGateway{})
	ngo, wishlist, item := seedWishlist(t, db, 5)

	t.Run("registration requires a settlement account", func(t *testing.T) {
		err := logic.CreateManualDonation(&model.DonationModel{
			NgoId:      ngo.Id,
			WishlistId: wishlist.Id,
			DonorName:  "Jane",
			DonorEmail: "jane@x.com",
			Amount:     250,
		})
		assert.Error(t, err)
	})

	require.NoError(t, db.Create(&model.SettlementAccountModel{
		NgoId:      ngo.Id,
		UpiId:      "helpinghands@upi",
		QrImageURL: "/uploads/qrcodes/1.png",
	}).Error)

	donation := &model.DonationModel{
		NgoId:          ngo.Id,
		WishlistId:     wishlist.Id,
		WishlistItemId: item.Id,
		DonorName:      "Jane",
		DonorEmail:     "jane@x.com",
		Amount:         250,
		Qty:            1,
	}
	require.NoError(t, logic.CreateManualDonation(donation))
	assert.Equal(t, model.DonationStatusPending, donation.Status)
	assert.Equal(t, "manual", donation.Gateway)
	assert.Contains(t, donation.TxnId, "manual_")

	// no credit until the donor declares the transfer
	var gotWishlist model.WishlistModel
	require.NoError(t, db.First(&gotWishlist, wishlist.Id).Error)
	assert.Equal(t, int64(0), gotWishlist.RaisedAmount)

	confirmed, err := logic.ConfirmManualDonation(donation.Id)
	require.NoError(t, err)
	assert.Equal(t, model.DonationStatusCompleted, confirmed.Status)

	require.NoError(t, db.First(&gotWishlist, wishlist.Id).Error)
	assert.Equal(t, int64(250), gotWishlist.RaisedAmount)

	var gotItem model.WishlistItemModel
	require.NoError(t, db.First(&gotItem, item.Id).Error)
	assert.Equal(t, 1, gotItem.FundedQty)

	var outboxAfterFirst int64
	require.NoError(t, db.Model(&model.EmailOutboxModel{}).Count(&outboxAfterFirst).Error)

	// a second confirm loses the conditional status flip and credits nothing
	_, err = logic.ConfirmManualDonation(donation.Id)
	assert.ErrorIs(t, err, ErrDonationNotPending)

	require.NoError(t, db.First(&gotWishlist, wishlist.Id).Error)
	assert.Equal(t, int64(250), gotWishlist.RaisedAmount)
	require.NoError(t, db.First(&gotItem, item.Id).Error)
	assert.Equal(t, 1, gotItem.FundedQty)

	var outboxAfterSecond int64
	require.NoError(t, db.Model(&model.EmailOutboxModel{}).Count(&outboxAfterSecond).Error)
	assert.Equal(t, outboxAfterFirst, outboxAfterSecond)
}

func TestSequentialDonationsBothPersist(t *testing.T) {
	db := setupDB(t)
	logic := setupDonationLogic(t, db, &approvedGateway{})
	_, wishlist, item := seedWishlist(t, db, 5)

	for _, donor := range []string{"Jane", "Ravi"} {
		session, err := logic.StartSession(wishlist.Id, 0)
		require.NoError(t, err)
		_, err = logic.ToggleItem(session.Id, item.Id)
		require.NoError(t, err)
		_, err = logic.NextStep(session.Id)
		require.NoError(t, err)
		_, err = logic.SetDetails(session.Id, donor, donor+"@x.com")
		require.NoError(t, err)
		_, err = logic.NextStep(session.Id)
		require.NoError(t, err)
		_, err = logic.Confirm(session.Id, "demo")
		require.NoError(t, err)
	}

	// additive increments, neither donation overwrites the other
	var gotWishlist model.WishlistModel
	require.NoError(t, db.First(&gotWishlist, wishlist.Id).Error)
	assert.Equal(t, int64(500), gotWishlist.RaisedAmount)

	var gotItem model.WishlistItemModel
	require.NoError(t, db.First(&gotItem, item.Id).Error)
	assert.Equal(t, 2, gotItem.FundedQty)
}
